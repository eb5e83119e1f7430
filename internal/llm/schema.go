package llm

import (
	"encoding/json"

	"treepress/internal/port"
)

// InlineSchema converts a response schema into the wire form sent to
// backends, hoisting every shared sub-schema definition into a top-level
// "$defs" map. Backends without native schema-reference resolution can then
// still enforce structure. Schemas with no definitions produce a payload
// with no "$defs" key at all.
func InlineSchema(s *port.Schema) map[string]any {
	if s == nil {
		return nil
	}
	defs := map[string]*port.Schema{}
	collectDefs(s, defs)

	b, err := json.Marshal(s)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	delete(m, "$defs")

	if len(defs) > 0 {
		dm := map[string]any{}
		for name, d := range defs {
			db, err := json.Marshal(d)
			if err != nil {
				continue
			}
			var dv map[string]any
			if err := json.Unmarshal(db, &dv); err != nil {
				continue
			}
			delete(dv, "$defs")
			dm[name] = dv
		}
		m["$defs"] = dm
	}
	return m
}

// collectDefs gathers $defs declared anywhere in the schema tree so nested
// definitions end up at the top level of the wire payload.
func collectDefs(s *port.Schema, into map[string]*port.Schema) {
	if s == nil {
		return
	}
	for name, d := range s.Defs {
		if _, seen := into[name]; !seen {
			into[name] = d
			collectDefs(d, into)
		}
	}
	for _, p := range s.Properties {
		collectDefs(p, into)
	}
	collectDefs(s.Items, into)
}
