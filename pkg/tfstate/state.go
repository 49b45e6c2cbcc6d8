package tfstate

import (
	"encoding/json"
	"fmt"
	"io"
)

// State is the output of "terraform show -json".
type State struct {
	FormatVersion    string `json:"format_version"`
	TerraformVersion string `json:"terraform_version"`
	Values           Values `json:"values"`
}

type Values struct {
	// Outputs
	RootModule Module `json:"root_module"`
}

type Module struct {
	Address      string     `json:"address"`
	Resources    []Resource `json:"resources"`
	ChildModules []Module   `json:"child_modules"`
}

type Resource struct {
	ResourceFields
	// The shape of 'Values' depends on '[ResourceFields.Type]'.
	Values json.RawMessage `json:"values"`
}

type ResourceFields struct {
	Address       string `json:"address"`
	Mode          string `json:"mode"`
	Type          string `json:"type"`
	Name          string `json:"name"`
	ProviderName  string `json:"provider_name"`
	SchemaVersion int    `json:"schema_version"`
}

// Decode reads a state.
func Decode(rd io.Reader) (State, error) {
	var state State
	if err := json.NewDecoder(rd).Decode(&state); err != nil {
		return State{}, fmt.Errorf("parsing state file: %s", err)
	}
	return state, nil
}

// Walk calls fn for every resource of module and of its child modules,
// depth first, in state order.
func Walk(module Module, fn func(Resource) error) error {
	for _, res := range module.Resources {
		if err := fn(res); err != nil {
			return err
		}
	}
	for _, child := range module.ChildModules {
		if err := Walk(child, fn); err != nil {
			return err
		}
	}
	return nil
}
