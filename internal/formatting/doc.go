// Package formatting renders command output as tables, JSON or YAML.
//
// Tables use go-pretty in a plain, kubectl-like style by default so output
// stays easy to grep; JSON goes through sonic and YAML through
// sigs.k8s.io/yaml, which honours the json tags of exported types.
package formatting
