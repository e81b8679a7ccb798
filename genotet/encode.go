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
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/googlegenomics/genotet/internal/expression"
	"github.com/googlegenomics/genotet/internal/network"
)

func encodeMatrixCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "encode-matrix INPUT OUTPUT",
		Short: "Convert a text expression matrix to the binary matrix format",
		Long: `Convert a whitespace separated text matrix to the binary matrix format.

The first line holds a label followed by the condition names.  Every other
line holds a gene name followed by one value per condition.`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return convertFile(args[0], args[1], encodeMatrix)
		},
	}
}

func encodeNetworkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "encode-network INPUT OUTPUT",
		Short: "Convert a text edge list to the binary network format",
		Long: `Convert a whitespace separated "source target weight" edge list to the
binary network format.  Every source gene is marked as a transcription factor.`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return convertFile(args[0], args[1], encodeNetwork)
		},
	}
}

func encodeMatrix(r io.Reader, w io.Writer) error {
	m, err := expression.ParseText(r)
	if err != nil {
		return fmt.Errorf("parsing matrix: %w", err)
	}
	b, err := expression.Encode(m)
	if err != nil {
		return fmt.Errorf("encoding matrix: %w", err)
	}
	_, err = w.Write(b)
	return err
}

func encodeNetwork(r io.Reader, w io.Writer) error {
	n, err := network.ParseText(r)
	if err != nil {
		return fmt.Errorf("parsing network: %w", err)
	}
	b, err := network.Encode(n)
	if err != nil {
		return fmt.Errorf("encoding network: %w", err)
	}
	_, err = w.Write(b)
	return err
}

func convertFile(input, output string, convert func(io.Reader, io.Writer) error) error {
	in, err := os.Open(input)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := convert(in, out); err != nil {
		out.Close()
		os.Remove(output)
		return err
	}
	return out.Close()
}
