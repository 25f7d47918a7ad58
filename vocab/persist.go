package vocab

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var v Vocabulary
	serializer.RegisterTypedDeserializer(v.SerializerType(), DeserializeVocabulary)
}

// Save writes the vocabulary as a flat symbol-to-index
// document.
//
// Paths ending in ".yaml" or ".yml" are written as YAML;
// everything else is written as JSON.
func (v *Vocabulary) Save(path string) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(v.Mapping())
	} else {
		data, err = json.MarshalIndent(v.Mapping(), "", "    ")
	}
	if err != nil {
		return essentials.AddCtx("save vocabulary", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return essentials.AddCtx("save vocabulary", err)
	}
	return nil
}

// Load reads a vocabulary written by Save.
func Load(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, essentials.AddCtx("load vocabulary", err)
	}
	var mapping map[string]int
	if isYAML(path) {
		err = yaml.Unmarshal(data, &mapping)
	} else {
		err = json.Unmarshal(data, &mapping)
	}
	if err != nil {
		return nil, essentials.AddCtx("load vocabulary", err)
	}
	res, err := FromMapping(mapping)
	if err != nil {
		return nil, essentials.AddCtx("load vocabulary", err)
	}
	return res, nil
}

// DeserializeVocabulary deserializes a Vocabulary.
func DeserializeVocabulary(d []byte) (*Vocabulary, error) {
	var mapping map[string]int
	if err := json.Unmarshal(d, &mapping); err != nil {
		return nil, essentials.AddCtx("deserialize Vocabulary", err)
	}
	res, err := FromMapping(mapping)
	if err != nil {
		return nil, essentials.AddCtx("deserialize Vocabulary", err)
	}
	return res, nil
}

// SerializerType returns the unique ID used to serialize
// a Vocabulary with the serializer package.
func (v *Vocabulary) SerializerType() string {
	return "github.com/ankurju/melody/vocab.Vocabulary"
}

// Serialize serializes the Vocabulary.
func (v *Vocabulary) Serialize() ([]byte, error) {
	return json.Marshal(v.Mapping())
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
