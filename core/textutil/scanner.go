package textutil

import (
	"regexp"
	"strings"
	"sync"
)

var scannerCache sync.Map

// ScanKeyValuePairs finds groups of consecutive "key": "value" pairs for the
// given keys in text that is not valid JSON. Strictly quoted pairs are tried
// first, single quoted or unquoted keys second.
func ScanKeyValuePairs(raw string, keys ...string) []map[string]string {
	if len(keys) == 0 {
		return nil
	}

	for _, re := range pairScanners(keys) {
		matches := re.FindAllStringSubmatch(raw, -1)
		if len(matches) == 0 {
			continue
		}

		pairs := make([]map[string]string, 0, len(matches))
		for _, match := range matches {
			pair := make(map[string]string, len(keys))
			for i, key := range keys {
				pair[key] = strings.TrimSpace(match[i+1])
			}
			pairs = append(pairs, pair)
		}
		return pairs
	}

	return nil
}

func pairScanners(keys []string) []*regexp.Regexp {
	cacheKey := strings.Join(keys, "\x00")
	if cached, ok := scannerCache.Load(cacheKey); ok {
		return cached.([]*regexp.Regexp)
	}

	strict := make([]string, len(keys))
	lenient := make([]string, len(keys))
	for i, key := range keys {
		quoted := regexp.QuoteMeta(key)
		strict[i] = `"` + quoted + `"\s*:\s*"([^"]*)"`
		lenient[i] = `['"]?` + quoted + `['"]?\s*:\s*['"]([^'"]*)['"]`
	}

	scanners := []*regexp.Regexp{
		regexp.MustCompile(strings.Join(strict, `\s*,\s*`)),
		regexp.MustCompile(strings.Join(lenient, `\s*,\s*`)),
	}
	scannerCache.Store(cacheKey, scanners)
	return scanners
}
