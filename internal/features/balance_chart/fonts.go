package balance_chart

import (
	"os"
	"path/filepath"
	"sync"

	"account-chart/internal/infra/log"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
)

// fontCandidates are tried in order after the configured font path.
var fontCandidates = []string{
	"etc/fonts/InterVariable.ttf",
	"etc/fonts/Inter-Regular.ttf",
	"~/Library/Fonts/Inter-Regular.ttf",
	"/Library/Fonts/Inter-Regular.ttf",
	"/usr/share/fonts/truetype/inter/Inter-Regular.ttf",
	"/usr/local/share/fonts/Inter-Regular.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"C:\\Windows\\Fonts\\arial.ttf",
}

var (
	fontMu    sync.Mutex
	fontCache = map[string]string{}
)

func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// findFont returns the first loadable TrueType font, preferring preferred.
// ok is false when none loads; callers then keep gg's built-in face.
func findFont(preferred string) (string, bool) {
	fontMu.Lock()
	defer fontMu.Unlock()

	if path, ok := fontCache[preferred]; ok {
		return path, path != ""
	}

	candidates := fontCandidates
	if preferred != "" {
		candidates = append([]string{preferred}, fontCandidates...)
	}

	for _, c := range candidates {
		path := expandHome(c)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if _, err := gg.LoadFontFace(path, 12); err != nil {
			log.LogWarn("Font file exists but failed to load", zap.String("path", path), zap.Error(err))
			continue
		}
		log.LogDebug("Chart font selected", zap.String("path", path))
		fontCache[preferred] = path
		return path, true
	}

	log.LogWarn("No TrueType font found, using built-in face", zap.Int("paths_checked", len(candidates)))
	fontCache[preferred] = ""
	return "", false
}
