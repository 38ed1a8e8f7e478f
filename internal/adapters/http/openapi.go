package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPIYAML []byte

var (
	openAPIJSON     []byte
	openAPIJSONOnce sync.Once
	openAPIJSONErr  error
)

// getOpenAPIJSON returns the OpenAPI document as JSON. The embedded YAML
// is converted on first access and cached.
func getOpenAPIJSON() ([]byte, error) {
	openAPIJSONOnce.Do(func() {
		openAPIJSON, openAPIJSONErr = convertOpenAPIToJSON(openAPIYAML)
	})
	return openAPIJSON, openAPIJSONErr
}

func convertOpenAPIToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing openapi.yaml: %w", err)
	}

	normalized, err := stringKeys(doc)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(normalized, "", "  ")
}

// stringKeys rewrites YAML mappings so encoding/json can marshal them.
// Response codes ("200") are quoted in the document; any other non-string
// key is an authoring error.
func stringKeys(v interface{}) (interface{}, error) {
	switch v := v.(type) {
	case map[string]interface{}:
		for key, value := range v {
			conv, err := stringKeys(value)
			if err != nil {
				return nil, err
			}
			v[key] = conv
		}
		return v, nil
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			strKey, ok := key.(string)
			if !ok {
				return nil, fmt.Errorf("openapi.yaml: non-string key %v", key)
			}
			conv, err := stringKeys(value)
			if err != nil {
				return nil, err
			}
			out[strKey] = conv
		}
		return out, nil
	case []interface{}:
		for i, value := range v {
			conv, err := stringKeys(value)
			if err != nil {
				return nil, err
			}
			v[i] = conv
		}
		return v, nil
	default:
		return v, nil
	}
}
