// Package fieldmap renames record fields between the local schema and the
// remote API. The transform is pure: inputs are never mutated.
package fieldmap

import "github.com/dmitrijs2005/geosync/internal/client/models"

// local name -> remote name, per table.
var table = map[models.Table]map[string]string{
	models.TableStates: {"country_uuid": "country_id"},
	models.TableCities: {"state_uuid": "state_id"},
}

// ToRemote maps local field names to the remote's.
func ToRemote(t models.Table, data map[string]any) map[string]any {
	return rename(data, table[t])
}

// ToLocal maps remote field names to local ones.
func ToLocal(t models.Table, data map[string]any) map[string]any {
	inverse := make(map[string]string, len(table[t]))
	for local, remote := range table[t] {
		inverse[remote] = local
	}
	return rename(data, inverse)
}

// rename moves each "from" key to its "to" key. A non-nil value already held
// under the target name wins over the renamed one.
func rename(data map[string]any, names map[string]string) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if _, renamed := names[k]; !renamed {
			out[k] = v
		}
	}
	for from, to := range names {
		v, ok := data[from]
		if !ok {
			continue
		}
		if existing, has := data[to]; has && existing != nil {
			continue
		}
		out[to] = v
	}
	return out
}
