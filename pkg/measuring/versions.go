package measuring

import (
	"fmt"

	"github.com/bft-labs/influxship/pkg/batch"
	"github.com/bft-labs/influxship/pkg/influx"
	"github.com/bft-labs/influxship/pkg/lineproto"
	"github.com/bft-labs/influxship/pkg/log"
)

// validateModuleVersions checks that all module versions are compatible.
func validateModuleVersions() error {
	modules := []struct {
		name       string
		version    string
		minVersion string
	}{
		{"lineproto", lineproto.Version, lineproto.MinCompatibleVersion},
		{"influx", influx.Version, influx.MinCompatibleVersion},
		{"batch", batch.Version, batch.MinCompatibleVersion},
		{"log", log.Version, log.MinCompatibleVersion},
		{"measuring", Version, MinCompatibleVersion},
	}

	for _, m := range modules {
		if !isVersionCompatible(m.version, m.minVersion) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				m.name, m.version, m.minVersion)
		}
	}
	return nil
}

// isVersionCompatible reports whether version >= minVersion, both in
// "major.minor.patch" form.
func isVersionCompatible(version, minVersion string) bool {
	var v, m [3]int
	_, _ = fmt.Sscanf(version, "%d.%d.%d", &v[0], &v[1], &v[2])
	_, _ = fmt.Sscanf(minVersion, "%d.%d.%d", &m[0], &m[1], &m[2])

	for i := range v {
		if v[i] != m[i] {
			return v[i] > m[i]
		}
	}
	return true
}
