package domain

// Metric is the similarity metric of a vector index.
type Metric string

// MetricCosine is the only metric used for legal corpora.
const MetricCosine Metric = "cosine"

// Default logical index names.
const (
	IndexConstitution = "constitution"
	IndexCriminal     = "criminal"
)

// IndexBinding maps a logical index name, used as the provenance tag on
// matches, to the physical collection that stores it.
type IndexBinding struct {
	// Name is the logical name, e.g. "constitution".
	Name string

	// Collection is the physical index name in the vector store.
	Collection string
}

// DefaultIndexBindings returns the two legal corpora in query order.
func DefaultIndexBindings() []IndexBinding {
	return []IndexBinding{
		{Name: IndexConstitution, Collection: "indialaw"},
		{Name: IndexCriminal, Collection: "criminallaw"},
	}
}

// FindIndexBinding returns the binding with the given logical name.
func FindIndexBinding(bindings []IndexBinding, name string) (IndexBinding, bool) {
	for _, b := range bindings {
		if b.Name == name {
			return b, true
		}
	}
	return IndexBinding{}, false
}

// IndexSpec describes an index to create.
type IndexSpec struct {
	Name      string
	Dimension int
	Metric    Metric

	// Region is a placement hint passed through to hosted backends.
	Region string
}

// IndexDescription reports the state of an existing index.
type IndexDescription struct {
	Name      string
	Dimension int
	Metric    Metric
	Ready     bool

	// Count is the number of stored vectors, when the backend reports it.
	Count int64
}
