// Package ids generates the K-sortable identifiers used for all records
// and object keys.
package ids

import "github.com/segmentio/ksuid"

func New() string {
	return ksuid.New().String()
}
