package domain

// StationType discriminates the two gauge families in the inventory.
type StationType int

const (
	StationFluviometric StationType = 1
	StationPluviometric StationType = 2
)

// Station is one row of the hydrological inventory. Immutable once loaded:
// the inventory reader builds it, calculators only read it.
type Station struct {
	Code          int
	Name          string
	Latitude      float64
	Longitude     float64
	Altitude      *float64
	DrainageKm2   *float64 // upstream drainage area, unknown for some gauges
	Basin         string
	SubBasin      string
	River         string
	State         string
	Municipality  string
	Authority     string
	Type          StationType
	Telemetric    bool
	Operating     bool
}

// Inventory is an immutable collection of stations with filter helpers.
type Inventory struct {
	stations []Station
}

// NewInventory wraps a station list. The slice is not copied; callers hand
// over ownership.
func NewInventory(stations []Station) *Inventory {
	return &Inventory{stations: stations}
}

// Stations returns the underlying list.
func (inv *Inventory) Stations() []Station { return inv.stations }

// Len returns the number of stations.
func (inv *Inventory) Len() int { return len(inv.stations) }

// FilterAuthority returns a new inventory holding only stations operated by
// the given authority.
func (inv *Inventory) FilterAuthority(authority string) *Inventory {
	var out []Station
	for _, s := range inv.stations {
		if s.Authority == authority {
			out = append(out, s)
		}
	}
	return NewInventory(out)
}

// FilterBasin returns a new inventory restricted to one macro basin.
func (inv *Inventory) FilterBasin(name string) *Inventory {
	var out []Station
	for _, s := range inv.stations {
		if s.Basin == name {
			out = append(out, s)
		}
	}
	return NewInventory(out)
}

// ByCode finds a station by its code.
func (inv *Inventory) ByCode(code int) (Station, bool) {
	for _, s := range inv.stations {
		if s.Code == code {
			return s, true
		}
	}
	return Station{}, false
}
