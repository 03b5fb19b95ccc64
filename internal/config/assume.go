package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2/unstable"
)

const assumeQualityKey = "assume_quality"

// decodeAssumeQuality walks the raw document for the assume_quality setting.
// The regular decoder cannot report table key order, so the expressions are
// read in document order with the unstable parser. Three shapes are accepted:
//
//	assume_quality = "720p"
//	assume_quality = { "720p+" = "h264", hdtv = "720p" }
//	[assume_quality]
//	hdtv = "720p"
//
// Dotted keys (assume_quality.hdtv = "720p") are treated like table entries.
// The setting is only read at the document root; one nested under another
// table (for example after a [logging] header) is an error rather than
// being silently ignored.
func decodeAssumeQuality(data []byte) (AssumeQuality, error) {
	var (
		out     AssumeQuality
		current []string
		parser  unstable.Parser
	)
	parser.Reset(data)
	for parser.NextExpression() {
		expr := parser.Expression()
		switch expr.Kind {
		case unstable.Table:
			current = keyParts(expr.Key())
			if err := checkRootPlacement(current); err != nil {
				return AssumeQuality{}, err
			}
		case unstable.ArrayTable:
			current = keyParts(expr.Key())
			if len(current) > 0 && current[0] == assumeQualityKey {
				return AssumeQuality{}, fmt.Errorf("%s: array tables are not supported", assumeQualityKey)
			}
		case unstable.KeyValue:
			full := append(append([]string(nil), current...), keyParts(expr.Key())...)
			if len(full) == 0 || full[0] != assumeQualityKey {
				if err := checkRootPlacement(full); err != nil {
					return AssumeQuality{}, err
				}
				continue
			}
			if err := out.add(full[1:], expr.Value()); err != nil {
				return AssumeQuality{}, err
			}
		}
	}
	if err := parser.Error(); err != nil {
		return AssumeQuality{}, err
	}
	return out, nil
}

func checkRootPlacement(path []string) error {
	idx := slices.Index(path, assumeQualityKey)
	if idx <= 0 {
		return nil
	}
	return fmt.Errorf("%s must be a top-level setting, found under [%s]", assumeQualityKey, strings.Join(path[:idx], "."))
}

func (a *AssumeQuality) add(path []string, value *unstable.Node) error {
	switch len(path) {
	case 0:
		switch value.Kind {
		case unstable.String:
			a.Quality = string(value.Data)
			return nil
		case unstable.InlineTable:
			children := value.Children()
			for children.Next() {
				entry := children.Node()
				if entry.Kind != unstable.KeyValue {
					continue
				}
				if err := a.add(keyParts(entry.Key()), entry.Value()); err != nil {
					return err
				}
			}
			return nil
		default:
			return fmt.Errorf("%s must be a quality string or a table, got %s", assumeQualityKey, value.Kind)
		}
	case 1:
		if value.Kind != unstable.String {
			return fmt.Errorf("%s.%s must be a quality string, got %s", assumeQualityKey, path[0], value.Kind)
		}
		a.Rules = append(a.Rules, AssumeRule{Target: path[0], Quality: string(value.Data)})
		return nil
	default:
		return fmt.Errorf("%s.%s: nested tables are not supported", assumeQualityKey, strings.Join(path, "."))
	}
}

func keyParts(it unstable.Iterator) []string {
	var parts []string
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}
