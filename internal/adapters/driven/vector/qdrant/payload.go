package qdrant

import (
	"fmt"

	qdrantclient "github.com/qdrant/go-client/qdrant"
)

func toPayload(meta map[string]any) map[string]*qdrantclient.Value {
	out := make(map[string]*qdrantclient.Value, len(meta)+1)
	for k, v := range meta {
		if v == nil {
			continue
		}
		out[k] = toValue(v)
	}
	return out
}

func toValue(v any) *qdrantclient.Value {
	switch val := v.(type) {
	case string:
		return &qdrantclient.Value{Kind: &qdrantclient.Value_StringValue{StringValue: val}}
	case bool:
		return &qdrantclient.Value{Kind: &qdrantclient.Value_BoolValue{BoolValue: val}}
	case int:
		return &qdrantclient.Value{Kind: &qdrantclient.Value_IntegerValue{IntegerValue: int64(val)}}
	case int32:
		return &qdrantclient.Value{Kind: &qdrantclient.Value_IntegerValue{IntegerValue: int64(val)}}
	case int64:
		return &qdrantclient.Value{Kind: &qdrantclient.Value_IntegerValue{IntegerValue: val}}
	case float32:
		return &qdrantclient.Value{Kind: &qdrantclient.Value_DoubleValue{DoubleValue: float64(val)}}
	case float64:
		return &qdrantclient.Value{Kind: &qdrantclient.Value_DoubleValue{DoubleValue: val}}
	case []string:
		values := make([]*qdrantclient.Value, len(val))
		for i, s := range val {
			values[i] = toValue(s)
		}
		return &qdrantclient.Value{Kind: &qdrantclient.Value_ListValue{
			ListValue: &qdrantclient.ListValue{Values: values},
		}}
	default:
		return toValue(fmt.Sprint(val))
	}
}

func fromPayload(payload map[string]*qdrantclient.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		if val := fromValue(v); val != nil {
			out[k] = val
		}
	}
	return out
}

func fromValue(v *qdrantclient.Value) any {
	switch kind := v.GetKind().(type) {
	case *qdrantclient.Value_StringValue:
		return kind.StringValue
	case *qdrantclient.Value_BoolValue:
		return kind.BoolValue
	case *qdrantclient.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrantclient.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrantclient.Value_ListValue:
		items := kind.ListValue.GetValues()
		strs := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.GetKind().(*qdrantclient.Value_StringValue)
			if !ok {
				return fmt.Sprint(items)
			}
			strs = append(strs, s.StringValue)
		}
		return strs
	default:
		return nil
	}
}
