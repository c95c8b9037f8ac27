// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/luisjohnson/mblibrary"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	listenAddr  string
	maxConns    int
	readTimeout time.Duration
	verbose     bool

	coilsStart, coilsCount     uint16
	discreteStart, discreteCount uint16
	holdingStart, holdingCount uint16
	inputStart, inputCount     uint16

	coilsPattern, discretePattern, holdingPattern, inputPattern string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Modbus TCP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", ":502", "listen address")
	serveCmd.Flags().IntVar(&maxConns, "max-conns", 100, "maximum concurrent connections")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "per-connection read timeout")
	serveCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose (debug) logging")

	serveCmd.Flags().Uint16Var(&coilsStart, "coils-start", 0, "first coil address to populate")
	serveCmd.Flags().Uint16Var(&coilsCount, "coils-count", 0, "number of coils to populate")
	serveCmd.Flags().StringVar(&coilsPattern, "coils-pattern", "zeros", "coils fill pattern: zeros, ones, random")

	serveCmd.Flags().Uint16Var(&discreteStart, "discrete-start", 0, "first discrete input address to populate")
	serveCmd.Flags().Uint16Var(&discreteCount, "discrete-count", 0, "number of discrete inputs to populate")
	serveCmd.Flags().StringVar(&discretePattern, "discrete-pattern", "zeros", "discrete inputs fill pattern: zeros, ones, random")

	serveCmd.Flags().Uint16Var(&holdingStart, "holding-start", 0, "first holding register address to populate")
	serveCmd.Flags().Uint16Var(&holdingCount, "holding-count", 0, "number of holding registers to populate")
	serveCmd.Flags().StringVar(&holdingPattern, "holding-pattern", "zeros", "holding registers fill pattern: zeros, ones, incremental, decremental, random, max")

	serveCmd.Flags().Uint16Var(&inputStart, "input-start", 0, "first input register address to populate")
	serveCmd.Flags().Uint16Var(&inputCount, "input-count", 0, "number of input registers to populate")
	serveCmd.Flags().StringVar(&inputPattern, "input-pattern", "zeros", "input registers fill pattern: zeros, ones, incremental, decremental, random, max")

	viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("max-conns", serveCmd.Flags().Lookup("max-conns"))
	viper.BindPFlag("read-timeout", serveCmd.Flags().Lookup("read-timeout"))
	viper.BindPFlag("verbose", serveCmd.Flags().Lookup("verbose"))
}

func parseBitPattern(s string) (modbus.Pattern, error) {
	switch strings.ToLower(s) {
	case "zeros":
		return modbus.PatternZeros, nil
	case "ones":
		return modbus.PatternOnes, nil
	case "random":
		return modbus.PatternRandom, nil
	default:
		return 0, fmt.Errorf("unsupported bit pattern %q (want zeros, ones, random)", s)
	}
}

func parseWordPattern(s string) (modbus.Pattern, error) {
	switch strings.ToLower(s) {
	case "zeros":
		return modbus.PatternZeros, nil
	case "ones":
		return modbus.PatternOnes, nil
	case "incremental":
		return modbus.PatternIncremental, nil
	case "decremental":
		return modbus.PatternDecremental, nil
	case "random":
		return modbus.PatternRandom, nil
	case "max":
		return modbus.PatternMax, nil
	default:
		return 0, fmt.Errorf("unsupported register pattern %q (want zeros, ones, incremental, decremental, random, max)", s)
	}
}

func populateDataArea(area *modbus.DataArea) error {
	if coilsCount > 0 {
		pattern, err := parseBitPattern(coilsPattern)
		if err != nil {
			return err
		}
		if err := area.GenerateCoils(coilsStart, int(coilsCount), pattern); err != nil {
			return fmt.Errorf("populate coils: %w", err)
		}
	}
	if discreteCount > 0 {
		pattern, err := parseBitPattern(discretePattern)
		if err != nil {
			return err
		}
		if err := area.GenerateDiscreteInputs(discreteStart, int(discreteCount), pattern); err != nil {
			return fmt.Errorf("populate discrete inputs: %w", err)
		}
	}
	if holdingCount > 0 {
		pattern, err := parseWordPattern(holdingPattern)
		if err != nil {
			return err
		}
		if err := area.GenerateHoldingRegisters(holdingStart, int(holdingCount), pattern); err != nil {
			return fmt.Errorf("populate holding registers: %w", err)
		}
	}
	if inputCount > 0 {
		pattern, err := parseWordPattern(inputPattern)
		if err != nil {
			return err
		}
		if err := area.GenerateInputRegisters(inputStart, int(inputCount), pattern); err != nil {
			return fmt.Errorf("populate input registers: %w", err)
		}
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger(verbose)

	area := modbus.NewDataArea()
	if err := populateDataArea(area); err != nil {
		return err
	}

	server := modbus.NewServer(area,
		modbus.WithServerLogger(logger),
		modbus.WithMaxConnections(viper.GetInt("max-conns")),
		modbus.WithReadTimeout(viper.GetDuration("read-timeout")),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
		server.Close()
	}()

	addr := viper.GetString("addr")
	logger.Info("starting modbus tcp server", slog.String("addr", addr))

	if err := server.ListenAndServeContext(ctx, addr); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
