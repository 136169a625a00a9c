package display

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// PreferredFont is looked up in the font directory first.
const PreferredFont = "DejaVuSansMono.ttf"

// SystemFonts are tried when the font directory has nothing usable.
var SystemFonts = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSansMono.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationMono-Regular.ttf",
	"/usr/share/fonts/truetype/freefont/FreeMono.ttf",
}

// Point sizes at 72 DPI, so one point is one pixel.
const (
	sizeTitle = 11
	sizeBody  = 9
	sizeSmall = 8
	sizeBig   = 13
	fontDPI   = 72
)

// Faces holds the four text styles used on screen.
type Faces struct {
	Title font.Face
	Body  font.Face
	Small font.Face
	Big   font.Face

	// Source is the file the faces were built from, or "builtin".
	Source string
}

// BuiltinFaces returns the bitmap fallback used when no TTF can be loaded.
func BuiltinFaces() Faces {
	f := basicfont.Face7x13
	return Faces{Title: f, Body: f, Small: f, Big: f, Source: "builtin"}
}

// LoadFaces tries fontDir/PreferredFont, then any *.ttf in fontDir by name,
// then SystemFonts, and finally falls back to the builtin bitmap font.
// It never fails.
func LoadFaces(fontDir string) Faces {
	for _, path := range fontCandidates(fontDir) {
		faces, err := facesFromFile(path)
		if err != nil {
			log.Printf("display: font %s: %v", path, err)
			continue
		}
		return faces
	}
	log.Printf("display: no TTF font found, using builtin bitmap font")
	return BuiltinFaces()
}

func fontCandidates(fontDir string) []string {
	var out []string
	if fontDir != "" {
		preferred := filepath.Join(fontDir, PreferredFont)
		if fileExists(preferred) {
			out = append(out, preferred)
		}
		if entries, err := os.ReadDir(fontDir); err == nil {
			var names []string
			for _, e := range entries {
				if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".ttf") && e.Name() != PreferredFont {
					names = append(names, e.Name())
				}
			}
			sort.Strings(names)
			for _, n := range names {
				out = append(out, filepath.Join(fontDir, n))
			}
		}
	}
	for _, p := range SystemFonts {
		if fileExists(p) {
			out = append(out, p)
		}
	}
	return out
}

func facesFromFile(path string) (Faces, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Faces{}, err
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return Faces{}, fmt.Errorf("parse: %w", err)
	}

	faces := Faces{Source: path}
	for _, s := range []struct {
		dst  *font.Face
		size float64
	}{
		{&faces.Title, sizeTitle},
		{&faces.Body, sizeBody},
		{&faces.Small, sizeSmall},
		{&faces.Big, sizeBig},
	} {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    s.size,
			DPI:     fontDPI,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return Faces{}, fmt.Errorf("face %.0fpt: %w", s.size, err)
		}
		*s.dst = face
	}
	return faces, nil
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
