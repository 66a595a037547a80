package evaluator

import (
	"bytes"

	"github.com/oarkflow/json"

	"github.com/thomasrohde/mini/pkg/value"
)

// VarsToJSON marshals the bindings of env as one JSON object with keys in
// sorted order.
func VarsToJSON(env *Env) ([]byte, error) {
	return (&orderedVars{env: env}).MarshalJSON()
}

// orderedVars preserves sorted key order in JSON output.
type orderedVars struct {
	env *Env
}

func (o *orderedVars) MarshalJSON() ([]byte, error) {
	names := o.env.Names()
	if len(names) == 0 {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, _ := o.env.Get(name)
		b, err := val.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// OutputToJSON marshals a print log as a JSON array of displayed values.
func OutputToJSON(output []value.Number) ([]byte, error) {
	if output == nil {
		output = []value.Number{}
	}
	return json.Marshal(output)
}
