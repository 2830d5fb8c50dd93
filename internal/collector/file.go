package collector

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/signal-scout/internal/model"
)

// FileCollector replays raw events from JSON files in a drop directory.
// Each file holds a JSON array of raw events. Unreadable files are logged
// and skipped so one bad drop never loses the rest of the batch.
type FileCollector struct {
	platform model.SourcePlatform
	dir      string
}

// NewFileCollector creates a collector reading *.json files under dir.
func NewFileCollector(platform model.SourcePlatform, dir string) *FileCollector {
	return &FileCollector{platform: platform, dir: dir}
}

func (c *FileCollector) Name() model.SourcePlatform {
	return c.platform
}

func (c *FileCollector) Collect(ctx context.Context) ([]model.RawEvent, error) {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return nil, eris.Wrapf(err, "collector: glob %s", c.dir)
	}
	sort.Strings(matches)

	var events []model.RawEvent
	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "collector: file replay canceled")
		}

		data, err := os.ReadFile(path)
		if err != nil {
			zap.L().Warn("collector: skipping unreadable file",
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}

		var batch []model.RawEvent
		if err := json.Unmarshal(data, &batch); err != nil {
			zap.L().Warn("collector: skipping malformed file",
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		events = append(events, batch...)
	}

	zap.L().Debug("collector: file replay complete",
		zap.String("dir", c.dir),
		zap.Int("files", len(matches)),
		zap.Int("events", len(events)),
	)
	return normalize(events, c.platform), nil
}
