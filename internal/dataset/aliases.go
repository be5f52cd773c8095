package dataset

// Gliders carry CTDs from different vendors, so the same physical quantity
// shows up under several variable names. The accepted aliases per canonical
// sensor identity are fixed at build time and resolved by table lookup.
var sensorAliases = map[string][]string{
	"pressure":     {"pressure", "pressure2", "pressure_rbr", "rbr_pressure", "sci_water_pressure"},
	"conductivity": {"conductivity", "conductivity2", "conductivity_rbr", "rbr_conductivity"},
	"temperature":  {"temperature", "temperature2", "temperature_rbr", "rbr_temperature"},
}

// Aliases returns the accepted variable names for a canonical sensor identity.
func Aliases(canonical string) []string {
	return sensorAliases[canonical]
}

// ResolveAlias returns the first variable present in the dataset among the
// accepted aliases for the canonical sensor identity.
func (d *Dataset) ResolveAlias(canonical string) (string, *Variable, bool) {
	for _, name := range sensorAliases[canonical] {
		if v, ok := d.Variables[name]; ok {
			return name, v, true
		}
	}
	return "", nil, false
}
