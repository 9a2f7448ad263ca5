// Package datasets bundles the example flight recordings offered in the
// dashboard's dataset selector.
package datasets

import "embed"

// FS holds ideal_rocket_launch.csv and sensor_data_mock.csv.
//
//go:embed *.csv
var FS embed.FS
