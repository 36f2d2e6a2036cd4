// Package legal normalises structured acts (chapters, sections,
// sub-sections, clauses and explanations) into provisions.
package legal

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/vidhi/internal/core/domain"
	"github.com/custodia-labs/vidhi/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles act JSON documents.
type Normaliser struct{}

// New creates a new act normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name identifies the normaliser in logs.
func (n *Normaliser) Name() string {
	return "legal"
}

// Normalise parses an act and emits one provision per non-empty unit, in
// document order: preamble, then for each section its text, sub-sections,
// clauses and explanations.
func (n *Normaliser) Normalise(ctx context.Context, source string, data []byte) ([]domain.Provision, error) {
	act, err := domain.ParseAct(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(source), err)
	}

	b := &builder{act: act}
	if act.HasPreamble() && !blank(*act.Preamble) {
		b.emit("Preamble: "+act.Preamble.String(), domain.DocTypePreamble, map[string]any{
			domain.MetaActNumber:    act.ActNumber.String(),
			domain.MetaCommencement: act.DateOfCommencement.String(),
		})
	}

	for ci := range act.Chapters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ch := &act.Chapters[ci]
		for si := range ch.Sections {
			b.section(ch, &ch.Sections[si])
		}
	}
	return b.out, nil
}

// builder accumulates provisions for one act.
type builder struct {
	act *domain.Act
	out []domain.Provision
}

func (b *builder) section(ch *domain.Chapter, sec *domain.Section) {
	num := sec.SectionNumber.String()

	if !blank(sec.Text) {
		text := fmt.Sprintf("Section %s — %s: %s", num, sec.SectionTitle, sec.Text)
		b.emit(text, domain.DocTypeSection, b.locate(ch, sec, map[string]any{
			domain.MetaActNumber: b.act.ActNumber.String(),
		}))
	}

	for _, sub := range sec.SubSections {
		body := sub.Text
		if !blank(sub.Term) && !blank(sub.Definition) {
			body = domain.Text(fmt.Sprintf("%s: %s", sub.Term, sub.Definition))
		}
		if blank(body) {
			continue
		}
		text := fmt.Sprintf("Section %s%s: %s", num, sub.SubSectionNumber, body)
		b.emit(text, domain.DocTypeSubSection, b.locate(ch, sec, map[string]any{
			domain.MetaSubSectionNumber: sub.SubSectionNumber.String(),
		}))
	}

	for _, cl := range sec.Clauses {
		if blank(cl.Text) {
			continue
		}
		text := fmt.Sprintf("Section %s%s: %s", num, cl.ClauseLabel, cl.Text)
		b.emit(text, domain.DocTypeClause, b.locate(ch, sec, map[string]any{
			domain.MetaClauseLabel: cl.ClauseLabel.String(),
		}))
	}

	for _, exp := range sec.Explanations {
		for _, body := range explanationBodies(exp) {
			text := fmt.Sprintf("Explanation %s: %s", exp.ExplanationNumber, body)
			b.emit(text, domain.DocTypeExplanation, b.locate(ch, sec, map[string]any{
				domain.MetaExplanationNumber: exp.ExplanationNumber.String(),
			}))
		}
	}
}

// explanationBodies returns one body per typed definition, or the content
// when the explanation is untyped.
func explanationBodies(exp domain.Explanation) []string {
	if exp.Types == nil {
		if blank(exp.Content) {
			return nil
		}
		return []string{exp.Content.String()}
	}
	var bodies []string
	for _, t := range exp.Types {
		if blank(t.Type) && blank(t.Definition) {
			continue
		}
		bodies = append(bodies, fmt.Sprintf("%s — %s", t.Type, t.Definition))
	}
	return bodies
}

// locate returns the chapter and section locators merged with extra.
func (b *builder) locate(ch *domain.Chapter, sec *domain.Section, extra map[string]any) map[string]any {
	meta := map[string]any{
		domain.MetaChapterNumber: ch.ChapterNumber.String(),
		domain.MetaChapterTitle:  ch.ChapterTitle.String(),
		domain.MetaSectionNumber: sec.SectionNumber.String(),
		domain.MetaSectionTitle:  sec.SectionTitle.String(),
	}
	for k, v := range extra {
		meta[k] = v
	}
	return meta
}

// emit appends a provision. Empty metadata values are dropped.
func (b *builder) emit(text string, docType domain.DocType, meta map[string]any) {
	meta[domain.MetaActTitle] = b.act.ActTitle.String()
	meta[domain.MetaDocType] = string(docType)
	for k, v := range meta {
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			delete(meta, k)
		}
	}
	b.out = append(b.out, domain.Provision{Text: text, Metadata: meta})
}

func blank(t domain.Text) bool {
	return strings.TrimSpace(string(t)) == ""
}
