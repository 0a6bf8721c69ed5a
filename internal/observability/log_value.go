package observability

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
	"time"

	otellog "go.opentelemetry.io/otel/log"
)

const maxLogValueDepth = 3

// logValue converts an arbitrary log argument into an OTel log value.
// Containers nested deeper than maxLogValueDepth are flattened with fmt.
func logValue(value any, depth int) otellog.Value {
	if value == nil {
		return otellog.Value{}
	}
	if depth >= maxLogValueDepth {
		return otellog.StringValue(fmt.Sprint(value))
	}
	if v, ok := scalarLogValue(value); ok {
		return v
	}
	return reflectLogValue(reflect.ValueOf(value), depth)
}

func scalarLogValue(value any) (otellog.Value, bool) {
	switch v := value.(type) {
	case string:
		return otellog.StringValue(v), true
	case bool:
		return otellog.BoolValue(v), true
	case int:
		return otellog.IntValue(v), true
	case int8, int16, int32, int64:
		return otellog.Int64Value(reflect.ValueOf(v).Int()), true
	case uint, uint8, uint16, uint32, uint64, uintptr:
		u := reflect.ValueOf(v).Uint()
		if u > math.MaxInt64 {
			return otellog.StringValue(fmt.Sprint(u)), true
		}
		return otellog.Int64Value(int64(u)), true
	case float32:
		return otellog.Float64Value(float64(v)), true
	case float64:
		return otellog.Float64Value(v), true
	case []byte:
		return otellog.BytesValue(slices.Clone(v)), true
	case time.Time:
		return otellog.StringValue(v.UTC().Format(time.RFC3339Nano)), true
	case time.Duration:
		return otellog.StringValue(v.String()), true
	case error:
		return otellog.StringValue(v.Error()), true
	case fmt.Stringer:
		return otellog.StringValue(v.String()), true
	}
	return otellog.Value{}, false
}

func reflectLogValue(rv reflect.Value, depth int) otellog.Value {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return otellog.Value{}
		}
		return logValue(rv.Elem().Interface(), depth+1)
	case reflect.Slice, reflect.Array:
		items := make([]otellog.Value, rv.Len())
		for i := range items {
			items[i] = logValue(rv.Index(i).Interface(), depth+1)
		}
		return otellog.SliceValue(items...)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return strings.Compare(a.String(), b.String())
		})
		kvs := make([]otellog.KeyValue, len(keys))
		for i, key := range keys {
			kvs[i] = otellog.KeyValue{Key: key.String(), Value: logValue(rv.MapIndex(key).Interface(), depth+1)}
		}
		return otellog.MapValue(kvs...)
	}
	return otellog.StringValue(fmt.Sprint(rv.Interface()))
}
