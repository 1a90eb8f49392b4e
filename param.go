package virnet

// param.go holds the construction parameters of a model, their defaults,
// validation, and serialization to and from yaml or json files

import (
	"encoding/json"
	"fmt"
	"gopkg.in/yaml.v3"
	"math"
	"os"
	"path"
)

// Params describes one model configuration.  Chances are percentages in [0,100].
type Params struct {
	NumberOfNodes        int     `json:"numberofnodes" yaml:"numberofnodes"`
	SpaceWidth           float64 `json:"spacewidth" yaml:"spacewidth"`
	SpaceHeight          float64 `json:"spaceheight" yaml:"spaceheight"`
	GainResistanceChance float64 `json:"gainresistancechance" yaml:"gainresistancechance"`
	RecoveryChance       float64 `json:"recoverychance" yaml:"recoverychance"`
	VirusSpreadChance    float64 `json:"virusspreadchance" yaml:"virusspreadchance"`
	VirusCheckFrequency  int     `json:"viruscheckfrequency" yaml:"viruscheckfrequency"`
	InitialOutbreakSize  int     `json:"initialoutbreaksize" yaml:"initialoutbreaksize"`
	AverageNodeDegree    float64 `json:"averagenodedegree" yaml:"averagenodedegree"`

	// GridPlacement draws integer coordinates, placing nodes on a lattice
	GridPlacement bool `json:"gridplacement" yaml:"gridplacement"`

	// Seed fixes the random stream.  When nil a seed is drawn from secure entropy.
	Seed *int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// DefaultParams returns the reference configuration
func DefaultParams() Params {
	return Params{
		NumberOfNodes:        150,
		SpaceWidth:           40,
		SpaceHeight:          40,
		GainResistanceChance: 5.0,
		RecoveryChance:       5.0,
		VirusSpreadChance:    2.5,
		VirusCheckFrequency:  1,
		InitialOutbreakSize:  3,
		AverageNodeDegree:    6,
	}
}

// WithSeed returns a copy of the parameters with the seed fixed
func (p Params) WithSeed(seed int64) Params {
	p.Seed = &seed
	return p
}

// maxGridSide bounds each side of a lattice placement area so that
// coordinates convert to int
const maxGridSide = 1 << 31

// TargetEdges is the number of links the network builder aims for,
// floor(averageNodeDegree * numberOfNodes / 2).  Targets no int can hold
// are clamped to math.MaxInt; the builder then stops at the complete graph
// and reports saturation.
func (p *Params) TargetEdges() int {
	target := math.Floor(p.AverageNodeDegree * float64(p.NumberOfNodes) / 2)
	if !(target < math.MaxInt) {
		return math.MaxInt
	}
	if target < 0 {
		return 0
	}
	return int(target)
}

// Validate checks every parameter and reports all the violations found.
// Each violation is an *InvalidParameterError.
func (p *Params) Validate() error {
	errs := []error{}
	bad := func(name string, value any, reason string) {
		errs = append(errs, &InvalidParameterError{Name: name, Value: value, Reason: reason})
	}

	if p.NumberOfNodes <= 0 {
		bad("numberofnodes", p.NumberOfNodes, "must be positive")
	}
	if !(p.SpaceWidth > 0) || math.IsInf(p.SpaceWidth, 0) {
		bad("spacewidth", p.SpaceWidth, "must be positive and finite")
	}
	if !(p.SpaceHeight > 0) || math.IsInf(p.SpaceHeight, 0) {
		bad("spaceheight", p.SpaceHeight, "must be positive and finite")
	}
	if p.GridPlacement && (p.SpaceWidth < 1 || p.SpaceHeight < 1) {
		bad("gridplacement", p.GridPlacement, "lattice placement needs a space at least 1x1")
	}
	if p.GridPlacement && (p.SpaceWidth > maxGridSide || p.SpaceHeight > maxGridSide) {
		bad("gridplacement", p.GridPlacement, fmt.Sprintf("lattice sides must not exceed %d", maxGridSide))
	}

	chances := []struct {
		name  string
		value float64
	}{
		{"gainresistancechance", p.GainResistanceChance},
		{"recoverychance", p.RecoveryChance},
		{"virusspreadchance", p.VirusSpreadChance},
	}
	for _, chance := range chances {
		// the negated form also rejects NaN
		if !(chance.value >= 0 && chance.value <= 100) {
			bad(chance.name, chance.value, "must lie in [0,100]")
		}
	}

	if p.VirusCheckFrequency < 1 {
		bad("viruscheckfrequency", p.VirusCheckFrequency, "must be at least 1")
	}
	if p.InitialOutbreakSize < 0 {
		bad("initialoutbreaksize", p.InitialOutbreakSize, "must be non-negative")
	}
	if !(p.AverageNodeDegree >= 0) || math.IsInf(p.AverageNodeDegree, 0) {
		bad("averagenodedegree", p.AverageNodeDegree, "must be non-negative and finite")
	}

	return ReportErrs(errs)
}

// WriteToFile stores the Params struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
func (p *Params) WriteToFile(filename string) error {
	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error

	switch pathExt {
	case ".yaml", ".YAML", ".yml":
		bytes, merr = yaml.Marshal(*p)
	case ".json", ".JSON":
		bytes, merr = json.MarshalIndent(*p, "", "\t")
	default:
		return fmt.Errorf("parameter file %s: extension must be .yaml, .yml or .json", filename)
	}
	if merr != nil {
		return merr
	}

	return os.WriteFile(filename, bytes, 0644)
}

// ReadParams deserializes a byte slice holding a representation of a Params struct.
// If the input argument of dict (those bytes) is empty, the file whose name is given is read
// to acquire them.  Fields absent from the input keep their default values.
func ReadParams(filename string, useYAML bool, dict []byte) (*Params, error) {
	var err error

	// if the dict slice of bytes is empty we get them from the file whose name is an argument
	if len(dict) == 0 {
		fileInfo, serr := os.Stat(filename)
		if serr != nil || fileInfo.IsDir() {
			return nil, fmt.Errorf("parameter file %s does not exist or cannot be read", filename)
		}
		dict, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
	}

	example := DefaultParams()

	if useYAML {
		err = yaml.Unmarshal(dict, &example)
	} else {
		err = json.Unmarshal(dict, &example)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding parameters from %s: %w", filename, err)
	}

	return &example, nil
}

// UseYAML reports whether a file name's extension selects yaml serialization
func UseYAML(filename string) bool {
	ext := path.Ext(filename)
	return ext == ".yaml" || ext == ".yml" || ext == ".YAML"
}
