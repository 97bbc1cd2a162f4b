package whisper

import (
	"fmt"
	"strings"

	"github.com/avollmer/whisperctl/internal/platform"
)

const (
	DefaultModel    = "base"
	DefaultLanguage = "en"

	modelBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/"
)

// Mode distinguishes English-only model variants from multilingual ones.
type Mode string

const (
	ModeRestricted   Mode = "restricted"
	ModeMultilingual Mode = "multilingual"
)

// Descriptor is the static identity of one installable model artifact.
type Descriptor struct {
	ID           string
	Size         string
	DisplayName  string
	SizeLabel    string
	SizeBytes    int64
	FileName     string
	Multilingual bool
}

// URL is the canonical download location for the artifact.
func (d Descriptor) URL() string {
	return modelBaseURL + d.FileName
}

type registryKey struct {
	size string
	mode Mode
}

// One entry per supported size and language mode. "large" ships multilingual
// only; upstream publishes it as large-v3 these days.
var registry = map[registryKey]Descriptor{
	{"tiny", ModeRestricted}:     {ID: "tiny.en", Size: "tiny", DisplayName: "Tiny (English)", SizeLabel: "75 MB", SizeBytes: 77704715, FileName: "ggml-tiny.en.bin"},
	{"tiny", ModeMultilingual}:   {ID: "tiny", Size: "tiny", DisplayName: "Tiny", SizeLabel: "75 MB", SizeBytes: 77691713, FileName: "ggml-tiny.bin", Multilingual: true},
	{"base", ModeRestricted}:     {ID: "base.en", Size: "base", DisplayName: "Base (English)", SizeLabel: "142 MB", SizeBytes: 147964211, FileName: "ggml-base.en.bin"},
	{"base", ModeMultilingual}:   {ID: "base", Size: "base", DisplayName: "Base", SizeLabel: "142 MB", SizeBytes: 147951465, FileName: "ggml-base.bin", Multilingual: true},
	{"small", ModeRestricted}:    {ID: "small.en", Size: "small", DisplayName: "Small (English)", SizeLabel: "466 MB", SizeBytes: 487614201, FileName: "ggml-small.en.bin"},
	{"small", ModeMultilingual}:  {ID: "small", Size: "small", DisplayName: "Small", SizeLabel: "466 MB", SizeBytes: 487601967, FileName: "ggml-small.bin", Multilingual: true},
	{"medium", ModeRestricted}:   {ID: "medium.en", Size: "medium", DisplayName: "Medium (English)", SizeLabel: "1.5 GB", SizeBytes: 1533774781, FileName: "ggml-medium.en.bin"},
	{"medium", ModeMultilingual}: {ID: "medium", Size: "medium", DisplayName: "Medium", SizeLabel: "1.5 GB", SizeBytes: 1533763059, FileName: "ggml-medium.bin", Multilingual: true},
	{"large", ModeMultilingual}:  {ID: "large", Size: "large", DisplayName: "Large", SizeLabel: "2.9 GB", SizeBytes: 3095033483, FileName: "ggml-large-v3.bin", Multilingual: true},
}

var sizeOrder = []string{"tiny", "base", "small", "medium", "large"}

// Descriptors returns every registry entry in a stable order, restricted
// variant first within each size.
func Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(registry))
	for _, size := range sizeOrder {
		if d, ok := registry[registryKey{size, ModeRestricted}]; ok {
			out = append(out, d)
		}
		if d, ok := registry[registryKey{size, ModeMultilingual}]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Lookup returns the descriptor for a size and mode.
func Lookup(size string, mode Mode) (Descriptor, bool) {
	d, ok := registry[registryKey{size, mode}]
	return d, ok
}

// ModelSizes lists the logical size tags.
func ModelSizes() []string {
	return append([]string(nil), sizeOrder...)
}

func parseSizeTag(tag string) (size string, restricted bool, err error) {
	size = strings.ToLower(strings.TrimSpace(tag))
	if size == "" {
		size = DefaultModel
	}
	if cut, ok := strings.CutSuffix(size, ".en"); ok {
		size = cut
		restricted = true
	}

	if _, ok := registry[registryKey{size, ModeMultilingual}]; !ok {
		return "", false, fmt.Errorf("unknown model %q (known models: %s)", tag, strings.Join(sizeOrder, ", "))
	}
	return size, restricted, nil
}

// Preferred maps a logical size tag and target language to the descriptor a
// caller should install. The default language gets the smaller restricted
// variant where one exists; anything else needs the multilingual file.
func Preferred(sizeTag, language string) (Descriptor, error) {
	size, restricted, err := parseSizeTag(sizeTag)
	if err != nil {
		return Descriptor{}, err
	}

	lang := strings.ToLower(strings.TrimSpace(language))
	wantRestricted := restricted || lang == "" || lang == DefaultLanguage

	if wantRestricted {
		if d, ok := Lookup(size, ModeRestricted); ok {
			return d, nil
		}
	}
	d, ok := Lookup(size, ModeMultilingual)
	if !ok {
		return Descriptor{}, fmt.Errorf("no multilingual variant registered for model %q", size)
	}
	return d, nil
}

// Selection is the outcome of resolving a model to a concrete file on disk.
type Selection struct {
	Descriptor Descriptor
	Path       string
	// Fallback is set when the restricted variant stands in for a missing
	// multilingual file. Transcription proceeds but may mis-transcribe
	// non-English audio.
	Fallback bool
	Warning  string
}

// Select resolves a logical model and language to an installed file,
// applying the availability-over-correctness fallback: a missing
// multilingual file is substituted by the restricted variant when that one
// is present, with a non-fatal warning.
func Select(env platform.Env, modelDir, sizeTag, language string) (Selection, error) {
	preferred, err := Preferred(sizeTag, language)
	if err != nil {
		return Selection{}, err
	}

	path, searched, found := LocateModelFile(env, modelDir, preferred.FileName)
	if found {
		return Selection{Descriptor: preferred, Path: path}, nil
	}

	size := preferred.Size
	if preferred.Multilingual {
		if alt, ok := Lookup(size, ModeRestricted); ok {
			altPath, altSearched, altFound := LocateModelFile(env, modelDir, alt.FileName)
			if altFound {
				return Selection{
					Descriptor: alt,
					Path:       altPath,
					Fallback:   true,
					Warning: fmt.Sprintf("multilingual model %s not found; using English-only %s, which may mis-transcribe %q audio",
						preferred.FileName, alt.FileName, language),
				}, nil
			}
			searched = append(searched, altSearched...)
		}
		return Selection{}, &NotFoundError{
			Subject:     "model file",
			Name:        preferred.FileName,
			Searched:    searched,
			DownloadURL: preferred.URL(),
		}
	}

	// Restricted variant missing; the multilingual file covers English too.
	if alt, ok := Lookup(size, ModeMultilingual); ok {
		altPath, altSearched, altFound := LocateModelFile(env, modelDir, alt.FileName)
		if altFound {
			return Selection{Descriptor: alt, Path: altPath}, nil
		}
		searched = append(searched, altSearched...)
	}

	return Selection{}, &NotFoundError{
		Subject:  "model file",
		Name:     preferred.FileName,
		Searched: searched,
	}
}
