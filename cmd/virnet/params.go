package main

import (
	"errors"
	"fmt"

	"github.com/iti/virnet"
	"github.com/spf13/cobra"
)

// addParamFlags registers one flag per model parameter, plus --config and
// --seed. Flag defaults are the reference configuration.
func addParamFlags(cmd *cobra.Command) {
	def := virnet.DefaultParams()
	flags := cmd.Flags()
	flags.String("config", "", "Parameter file (.yaml, .yml or .json); flags override its values")
	flags.Int("nodes", def.NumberOfNodes, "Number of nodes")
	flags.Float64("width", def.SpaceWidth, "Width of the placement area")
	flags.Float64("height", def.SpaceHeight, "Height of the placement area")
	flags.Float64("spread", def.VirusSpreadChance, "Chance (percent) that an infected node infects a neighbor per tick")
	flags.Float64("recovery", def.RecoveryChance, "Chance (percent) that a virus check clears the infection")
	flags.Float64("resistance", def.GainResistanceChance, "Chance (percent) that a recovered node becomes resistant")
	flags.Int("check-frequency", def.VirusCheckFrequency, "Ticks between virus checks")
	flags.Int("outbreak", def.InitialOutbreakSize, "Number of nodes infected at setup")
	flags.Float64("degree", def.AverageNodeDegree, "Average node degree of the network")
	flags.Bool("grid", def.GridPlacement, "Place nodes on integer coordinates")
	flags.Int64("seed", 0, "Seed of the random stream (drawn at random when not set)")
}

// loadParams resolves the parameters of a command: defaults, then the
// --config file, then every flag set explicitly on the command line.
func loadParams(cmd *cobra.Command) (virnet.Params, error) {
	flags := cmd.Flags()
	params := virnet.DefaultParams()

	if file, _ := flags.GetString("config"); file != "" {
		fromFile, err := virnet.ReadParams(file, virnet.UseYAML(file), nil)
		if err != nil {
			return params, fmt.Errorf("failed to load config: %w", err)
		}
		params = *fromFile
	}

	var err error
	if flags.Changed("nodes") {
		params.NumberOfNodes, err = flags.GetInt("nodes")
	}
	if err == nil && flags.Changed("width") {
		params.SpaceWidth, err = flags.GetFloat64("width")
	}
	if err == nil && flags.Changed("height") {
		params.SpaceHeight, err = flags.GetFloat64("height")
	}
	if err == nil && flags.Changed("spread") {
		params.VirusSpreadChance, err = flags.GetFloat64("spread")
	}
	if err == nil && flags.Changed("recovery") {
		params.RecoveryChance, err = flags.GetFloat64("recovery")
	}
	if err == nil && flags.Changed("resistance") {
		params.GainResistanceChance, err = flags.GetFloat64("resistance")
	}
	if err == nil && flags.Changed("check-frequency") {
		params.VirusCheckFrequency, err = flags.GetInt("check-frequency")
	}
	if err == nil && flags.Changed("outbreak") {
		params.InitialOutbreakSize, err = flags.GetInt("outbreak")
	}
	if err == nil && flags.Changed("degree") {
		params.AverageNodeDegree, err = flags.GetFloat64("degree")
	}
	if err == nil && flags.Changed("grid") {
		params.GridPlacement, err = flags.GetBool("grid")
	}
	if err == nil && flags.Changed("seed") {
		var seed int64
		seed, err = flags.GetInt64("seed")
		params = params.WithSeed(seed)
	}
	if err != nil {
		return params, fmt.Errorf("failed to read flags: %w", err)
	}
	return params, nil
}

// setupModel builds a model and sets it up, attaching tm when it is not nil.
// A saturated network is an error unless allowSaturated, in which case the
// partial network is kept.
func setupModel(cmd *cobra.Command, params virnet.Params, tm *virnet.TraceManager, allowSaturated bool) (*virnet.Model, error) {
	m, err := virnet.NewModel(params)
	if err != nil {
		return nil, err
	}
	logger, err := commandLogger(cmd)
	if err != nil {
		return nil, err
	}
	m.SetLogger(logger)
	if tm != nil {
		m.SetTraceManager(tm)
	}

	err = m.Setup()
	if errors.Is(err, virnet.ErrNetworkSaturated) && allowSaturated {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("setup failed (seed %d): %w", m.Seed(), err)
	}
	return m, nil
}
