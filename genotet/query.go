// Copyright 2019 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) queryCommands() []*cobra.Command {
	var genes, conditions, tfaFile string

	matrix := &cobra.Command{
		Use:   "matrix FILE",
		Short: "Select genes and conditions from an expression matrix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			result, err := s.Matrix(cmd.Context(), args[0], genes, conditions)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
	matrix.Flags().StringVarP(&genes, "genes", "g", "", "gene name pattern")
	matrix.Flags().StringVar(&conditions, "conditions", "", "condition name pattern")

	profile := &cobra.Command{
		Use:   "profile FILE GENE",
		Short: "Print the expression profile of one gene",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			result, err := s.Profile(cmd.Context(), args[0], tfaFile, args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
	profile.Flags().StringVar(&tfaFile, "tfa", "", "TFA matrix to align with the profile")

	tfaProfile := &cobra.Command{
		Use:   "tfa-profile FILE GENE",
		Short: "Print the TFA row of one gene",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			result, err := s.TFAProfile(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	var nodes string
	network := &cobra.Command{
		Use:   "network FILE",
		Short: "Select the sub-network of genes matching a pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			result, err := s.Network(cmd.Context(), args[0], nodes)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
	network.Flags().StringVarP(&nodes, "genes", "g", "", "gene name pattern")

	incident := &cobra.Command{
		Use:   "incident FILE GENE",
		Short: "List the edges touching a gene",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			result, err := s.IncidentEdges(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	comb := &cobra.Command{
		Use:   "comb FILE PATTERN",
		Short: "List the genes regulated by every regulator matching a pattern",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			result, err := s.CombinedRegulators(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	mapping := &cobra.Command{
		Use:   "mapping [NAME [GENE]]",
		Short: "List mappings, print one, or look up the binding file of a gene",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			if len(args) == 0 {
				ids, err := s.ListMappings(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd, ids)
			}
			m, err := s.Mapping(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return printJSON(cmd, m)
			}
			file, ok := m.Lookup(args[1])
			if !ok {
				return fmt.Errorf("gene %q not in mapping %s", args[1], args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), file)
			return nil
		},
	}

	list := &cobra.Command{
		Use:       "list matrices|networks",
		Short:     "Print the description file of the matrices or the networks",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"matrices", "networks"},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			var entries interface{}
			if args[0] == "networks" {
				entries, err = s.ListNetworks(cmd.Context())
			} else {
				entries, err = s.ListMatrices(cmd.Context())
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, entries)
		},
	}

	return []*cobra.Command{matrix, profile, tfaProfile, network, incident, comb, mapping, list}
}
