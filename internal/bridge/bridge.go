// Package bridge reconciles the country labels found in source files
// with ISO alpha-2 codes and English display names.
package bridge

import (
	_ "embed"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	apperrors "tradepulse/internal/errors"
)

//go:embed countries.yaml
var defaultMapping []byte

// mappingFile is the on-disk shape of a country mapping.
type mappingFile struct {
	NameToCode   map[string]string `yaml:"name_to_code"`
	CodeToName   map[string]string `yaml:"code_to_name"`
	KoreanToCode map[string]string `yaml:"korean_to_code"`
}

// Mapper resolves country tokens through the name/code tables.
type Mapper struct {
	nameToCode   map[string]string
	codeToName   map[string]string
	koreanToCode map[string]string
}

// NewMapper builds a mapper from explicit tables. Name keys are
// normalized to lower case, code keys to upper case.
func NewMapper(nameToCode, codeToName, koreanToCode map[string]string) *Mapper {
	m := &Mapper{
		nameToCode:   make(map[string]string, len(nameToCode)),
		codeToName:   make(map[string]string, len(codeToName)),
		koreanToCode: make(map[string]string, len(koreanToCode)),
	}
	for name, code := range nameToCode {
		m.nameToCode[normalizeName(name)] = strings.ToUpper(code)
	}
	for code, name := range codeToName {
		m.codeToName[strings.ToUpper(code)] = name
	}
	for name, code := range koreanToCode {
		m.koreanToCode[strings.TrimSpace(name)] = strings.ToUpper(code)
	}
	return m
}

// Load reads a mapping file, falling back to the embedded default
// when path is empty or missing.
func Load(path string) (*Mapper, error) {
	data := defaultMapping
	if path != "" {
		if raw, err := os.ReadFile(path); err == nil {
			data = raw
		} else if !os.IsNotExist(err) {
			return nil, apperrors.WrapProcessing(apperrors.CodeFileRead, err, "reading country mapping %s", path)
		}
	}

	var mf mappingFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, apperrors.WrapProcessing(apperrors.CodeFileRead, err, "parsing country mapping")
	}
	return NewMapper(mf.NameToCode, mf.CodeToName, mf.KoreanToCode), nil
}

// CodeForName maps an English country name to its ISO code.
func (m *Mapper) CodeForName(name string) (string, bool) {
	code, ok := m.nameToCode[normalizeName(name)]
	return code, ok
}

// NameForCode maps an ISO code to its English display name. The code
// is upper-cased before lookup.
func (m *Mapper) NameForCode(code string) (string, bool) {
	name, ok := m.codeToName[strings.ToUpper(strings.TrimSpace(code))]
	return name, ok
}

// Resolve performs the two-hop reconciliation: English name to ISO
// code, then code to display name. Both hops must succeed.
func (m *Mapper) Resolve(name string) (code, display string, ok bool) {
	code, ok = m.CodeForName(name)
	if !ok {
		return "", "", false
	}
	display, ok = m.NameForCode(code)
	if !ok {
		return "", "", false
	}
	return code, display, true
}

// ResolveLoose is the partner-table variant of Resolve: each hop
// defaults to "" on a miss and the caller keeps the row either way.
func (m *Mapper) ResolveLoose(name string) (code, display string) {
	code = m.nameToCode[normalizeName(name)]
	if code != "" {
		display = m.codeToName[code]
	}
	return code, display
}

// ResolveKorean performs the two-hop reconciliation starting from a
// Korean country name.
func (m *Mapper) ResolveKorean(name string) (code, display string, ok bool) {
	code, ok = m.koreanToCode[strings.TrimSpace(name)]
	if !ok {
		return "", "", false
	}
	display, ok = m.NameForCode(code)
	if !ok {
		return "", "", false
	}
	return code, display, true
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
