package render

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
)

// ErrNoArt is returned when a deck has neither ANSI art nor a decodable
// image for a card
var ErrNoArt = errors.New("no ANSI art or convertible image")

// Art sizes in character cells
const (
	ArtWidth  = 40
	ArtHeight = 32
)

var (
	ansiDirs  = []string{"ansi32", "ansi256"}
	imageDirs = []string{"h2400", "h1200", "h750"}
	imageExts = []string{".png", ".jpg", ".jpeg", ".gif"}
)

// FindArt returns ANSI art for a card of the deck at deckPath. Existing
// ansi32/ansi256 files win; otherwise a raster image is converted and cached
// in cacheDir.
func FindArt(deckPath, cacheDir, cardID string) (string, error) {
	if deckPath == "" {
		return "", ErrNoArt
	}

	for _, dir := range ansiDirs {
		path, err := cardPath(filepath.Join(deckPath, dir), cardID, ".ansi")
		if err != nil {
			return "", err
		}
		if data, err := os.ReadFile(path); err == nil {
			return string(data), nil
		}
	}

	imagePath, err := findCardImage(deckPath, cardID)
	if err != nil {
		return "", err
	}

	cachePath := filepath.Join(cacheDir, "ansi_cache", fmt.Sprintf("%x.ansi", sha256.Sum256([]byte(imagePath))))
	if data, err := os.ReadFile(cachePath); err == nil {
		return string(data), nil
	}

	art, err := generateArt(imagePath)
	if err != nil {
		return "", err
	}

	// A failed cache write only costs a conversion next time.
	if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err == nil {
		_ = os.WriteFile(cachePath, []byte(art), 0644)
	}
	return art, nil
}

// cardPath maps a canonical ID to its file under baseDir
func cardPath(baseDir, cardID, ext string) (string, error) {
	parts := strings.Split(cardID, ".")
	switch {
	case len(parts) == 2 && parts[0] == "major_arcana":
		return filepath.Join(baseDir, "major_arcana", parts[1]+ext), nil
	case len(parts) == 3 && parts[0] == "minor_arcana":
		return filepath.Join(baseDir, "minor_arcana", parts[1], parts[2]+ext), nil
	default:
		return "", fmt.Errorf("invalid card ID format: %s", cardID)
	}
}

// findCardImage searches the known raster directories first, then any other
// directory of the deck.
func findCardImage(deckPath, cardID string) (string, error) {
	dirs := append([]string(nil), imageDirs...)
	if entries, err := os.ReadDir(deckPath); err == nil {
		for _, entry := range entries {
			name := entry.Name()
			if !entry.IsDir() || slices.Contains(dirs, name) || slices.Contains(ansiDirs, name) ||
				name == "meanings" || name == "card_backs" || name == "scalable" {
				continue
			}
			dirs = append(dirs, name)
		}
	}

	for _, dir := range dirs {
		for _, ext := range imageExts {
			path, err := cardPath(filepath.Join(deckPath, dir), cardID, ext)
			if err != nil {
				return "", err
			}
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}
	return "", ErrNoArt
}

func generateArt(imagePath string) (string, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	return ImageToANSI(img, ArtWidth, ArtHeight), nil
}

// ImageToANSI converts an image to 24-bit color half-block art. Each cell
// shows the averaged top pixel pair as foreground and the bottom pair as
// background.
func ImageToANSI(img image.Image, width, height int) string {
	resized := resize.Resize(uint(width*2), uint(height*2), img, resize.Lanczos3)

	var b strings.Builder
	for y := 0; y < height*2; y += 2 {
		for x := 0; x < width*2; x += 2 {
			top := averageColor(colorAt(resized, x, y), colorAt(resized, x+1, y))
			bottom := averageColor(colorAt(resized, x, y+1), colorAt(resized, x+1, y+1))

			tr, tg, tb := top.RGB255()
			br, bg, bb := bottom.RGB255()
			fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀\x1b[0m", tr, tg, tb, br, bg, bb)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func colorAt(img image.Image, x, y int) colorful.Color {
	var c color.Color = color.RGBA{0, 0, 0, 255}
	if (image.Point{X: x, Y: y}).In(img.Bounds()) {
		c = img.At(x, y)
	}
	col, _ := colorful.MakeColor(c)
	return col
}

func averageColor(colors ...colorful.Color) colorful.Color {
	var r, g, b float64
	for _, c := range colors {
		r += c.R
		g += c.G
		b += c.B
	}
	n := float64(len(colors))
	return colorful.Color{R: r / n, G: g / n, B: b / n}
}
