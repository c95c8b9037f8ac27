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

package modbus

import (
	"errors"
	"math/rand"
	"sort"
	"sync"
)

// registerCapacity is the maximum number of entries held per kind.
const registerCapacity = 65536

// Errors raised by DataArea setup and query operations.
var (
	// ErrDuplicateAddress is returned by insert when the address already exists.
	ErrDuplicateAddress = errors.New("modbus: duplicate address")

	// ErrCapacityExceeded is returned by insert once a kind holds 65536 entries.
	ErrCapacityExceeded = errors.New("modbus: capacity exceeded")

	// ErrOutOfRange is returned by a range read or single write when an
	// address (or the whole requested interval) is not present, or the
	// requested length is invalid.
	ErrOutOfRange = errors.New("modbus: out of range")

	// ErrInvalidArgument is returned by generate when the pattern does not
	// apply to the kind (e.g. Incremental on a bit kind).
	ErrInvalidArgument = errors.New("modbus: invalid argument")
)

// Pattern selects the fill sequence used by the bulk generators.
type Pattern int

// Supported fill patterns.
const (
	PatternZeros Pattern = iota
	PatternOnes
	PatternIncremental
	PatternDecremental
	PatternRandom
	PatternMax
)

// DataArea is the concurrent, address-sorted register store. One instance
// is shared by every connection a Server accepts; the unit identifier
// carried by a request plays no role in selecting it.
type DataArea struct {
	mu sync.Mutex

	coils            []*Coil
	discreteInputs   []*DiscreteInput
	holdingRegisters []*HoldingRegister
	inputRegisters   []*InputRegister
}

// NewDataArea returns an empty DataArea.
func NewDataArea() *DataArea {
	return &DataArea{}
}

// --- Coil ---

// InsertCoil adds a coil at address with the given initial value.
func (d *DataArea) InsertCoil(address uint16, value bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx, found := searchCoil(d.coils, address)
	if found {
		return ErrDuplicateAddress
	}
	if len(d.coils) >= registerCapacity {
		return ErrCapacityExceeded
	}
	d.coils = append(d.coils, nil)
	copy(d.coils[idx+1:], d.coils[idx:])
	d.coils[idx] = &Coil{address: address, value: value}
	return nil
}

// ReadCoils returns the values of qty coils starting at start. The unitID
// parameter is accepted only to satisfy the Handler interface; the core
// never routes by unit identifier.
func (d *DataArea) ReadCoils(_ UnitID, start, qty uint16) ([]bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := checkRange(start, qty, MaxQuantityCoils); err != nil {
		return nil, err
	}
	out := make([]bool, qty)
	for i := range out {
		addr := start + uint16(i)
		idx, found := searchCoil(d.coils, addr)
		if !found {
			return nil, ErrOutOfRange
		}
		out[i] = d.coils[idx].value
	}
	return out, nil
}

// WriteSingleCoil sets the coil at address. It fails with ErrOutOfRange if
// the address does not exist.
func (d *DataArea) WriteSingleCoil(_ UnitID, address uint16, value bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx, found := searchCoil(d.coils, address)
	if !found {
		return ErrOutOfRange
	}
	d.coils[idx].value = value
	return nil
}

// WriteMultipleCoils writes values to consecutive addresses starting at
// addr, one at a time in ascending order. The DataArea mutex is acquired
// once per element rather than once for the whole call.
func (d *DataArea) WriteMultipleCoils(unitID UnitID, addr uint16, values []bool) error {
	for i, v := range values {
		if err := d.WriteSingleCoil(unitID, addr+uint16(i), v); err != nil {
			return err
		}
	}
	return nil
}

// GenerateCoils inserts count coils starting at start following pattern.
func (d *DataArea) GenerateCoils(start uint16, count int, pattern Pattern) error {
	switch pattern {
	case PatternZeros, PatternOnes, PatternRandom:
	default:
		return ErrInvalidArgument
	}
	for i := 0; i < count; i++ {
		if err := d.InsertCoil(start+uint16(i), bitPatternValue(pattern)); err != nil {
			return err
		}
	}
	return nil
}

// --- DiscreteInput ---

// InsertDiscreteInput adds a discrete input at address with the given
// initial value.
func (d *DataArea) InsertDiscreteInput(address uint16, value bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx, found := searchDiscreteInput(d.discreteInputs, address)
	if found {
		return ErrDuplicateAddress
	}
	if len(d.discreteInputs) >= registerCapacity {
		return ErrCapacityExceeded
	}
	d.discreteInputs = append(d.discreteInputs, nil)
	copy(d.discreteInputs[idx+1:], d.discreteInputs[idx:])
	d.discreteInputs[idx] = &DiscreteInput{address: address, value: value}
	return nil
}

// ReadDiscreteInputs returns the values of qty discrete inputs starting at
// start.
func (d *DataArea) ReadDiscreteInputs(_ UnitID, start, qty uint16) ([]bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := checkRange(start, qty, MaxQuantityDiscreteInputs); err != nil {
		return nil, err
	}
	out := make([]bool, qty)
	for i := range out {
		addr := start + uint16(i)
		idx, found := searchDiscreteInput(d.discreteInputs, addr)
		if !found {
			return nil, ErrOutOfRange
		}
		out[i] = d.discreteInputs[idx].value
	}
	return out, nil
}

// SetDiscreteInput updates a discrete input's value directly. This is the
// only write path for discrete inputs; the PDU processor never calls it.
func (d *DataArea) SetDiscreteInput(address uint16, value bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx, found := searchDiscreteInput(d.discreteInputs, address)
	if !found {
		return ErrOutOfRange
	}
	d.discreteInputs[idx].value = value
	return nil
}

// GenerateDiscreteInputs inserts count discrete inputs starting at start
// following pattern.
func (d *DataArea) GenerateDiscreteInputs(start uint16, count int, pattern Pattern) error {
	switch pattern {
	case PatternZeros, PatternOnes, PatternRandom:
	default:
		return ErrInvalidArgument
	}
	for i := 0; i < count; i++ {
		if err := d.InsertDiscreteInput(start+uint16(i), bitPatternValue(pattern)); err != nil {
			return err
		}
	}
	return nil
}

// --- HoldingRegister ---

// InsertHoldingRegister adds a holding register at address with the given
// initial value.
func (d *DataArea) InsertHoldingRegister(address, value uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx, found := searchHoldingRegister(d.holdingRegisters, address)
	if found {
		return ErrDuplicateAddress
	}
	if len(d.holdingRegisters) >= registerCapacity {
		return ErrCapacityExceeded
	}
	d.holdingRegisters = append(d.holdingRegisters, nil)
	copy(d.holdingRegisters[idx+1:], d.holdingRegisters[idx:])
	d.holdingRegisters[idx] = &HoldingRegister{address: address, value: value}
	return nil
}

// ReadHoldingRegisters returns the values of qty holding registers starting
// at start.
func (d *DataArea) ReadHoldingRegisters(_ UnitID, start, qty uint16) ([]uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := checkRange(start, qty, MaxQuantityRegisters); err != nil {
		return nil, err
	}
	out := make([]uint16, qty)
	for i := range out {
		addr := start + uint16(i)
		idx, found := searchHoldingRegister(d.holdingRegisters, addr)
		if !found {
			return nil, ErrOutOfRange
		}
		out[i] = d.holdingRegisters[idx].value
	}
	return out, nil
}

// WriteSingleRegister sets the holding register at address. It fails with
// ErrOutOfRange if the address does not exist.
func (d *DataArea) WriteSingleRegister(_ UnitID, address, value uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx, found := searchHoldingRegister(d.holdingRegisters, address)
	if !found {
		return ErrOutOfRange
	}
	d.holdingRegisters[idx].value = value
	return nil
}

// WriteMultipleRegisters writes values to consecutive addresses starting at
// addr, one at a time in ascending order.
func (d *DataArea) WriteMultipleRegisters(unitID UnitID, addr uint16, values []uint16) error {
	for i, v := range values {
		if err := d.WriteSingleRegister(unitID, addr+uint16(i), v); err != nil {
			return err
		}
	}
	return nil
}

// GenerateHoldingRegisters inserts count holding registers starting at
// start following pattern.
func (d *DataArea) GenerateHoldingRegisters(start uint16, count int, pattern Pattern) error {
	for i := 0; i < count; i++ {
		v, err := wordPatternValue(pattern, i, count)
		if err != nil {
			return err
		}
		if err := d.InsertHoldingRegister(start+uint16(i), v); err != nil {
			return err
		}
	}
	return nil
}

// --- InputRegister ---

// InsertInputRegister adds an input register at address with the given
// initial value.
func (d *DataArea) InsertInputRegister(address, value uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx, found := searchInputRegister(d.inputRegisters, address)
	if found {
		return ErrDuplicateAddress
	}
	if len(d.inputRegisters) >= registerCapacity {
		return ErrCapacityExceeded
	}
	d.inputRegisters = append(d.inputRegisters, nil)
	copy(d.inputRegisters[idx+1:], d.inputRegisters[idx:])
	d.inputRegisters[idx] = &InputRegister{address: address, value: value}
	return nil
}

// ReadInputRegisters returns the values of qty input registers starting at
// start.
func (d *DataArea) ReadInputRegisters(_ UnitID, start, qty uint16) ([]uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := checkRange(start, qty, MaxQuantityRegisters); err != nil {
		return nil, err
	}
	out := make([]uint16, qty)
	for i := range out {
		addr := start + uint16(i)
		idx, found := searchInputRegister(d.inputRegisters, addr)
		if !found {
			return nil, ErrOutOfRange
		}
		out[i] = d.inputRegisters[idx].value
	}
	return out, nil
}

// SetInputRegister updates an input register's value directly. This is the
// only write path for input registers; the PDU processor never calls it.
func (d *DataArea) SetInputRegister(address, value uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx, found := searchInputRegister(d.inputRegisters, address)
	if !found {
		return ErrOutOfRange
	}
	d.inputRegisters[idx].value = value
	return nil
}

// GenerateInputRegisters inserts count input registers starting at start
// following pattern.
func (d *DataArea) GenerateInputRegisters(start uint16, count int, pattern Pattern) error {
	for i := 0; i < count; i++ {
		v, err := wordPatternValue(pattern, i, count)
		if err != nil {
			return err
		}
		if err := d.InsertInputRegister(start+uint16(i), v); err != nil {
			return err
		}
	}
	return nil
}

// --- shared helpers ---

// checkRange enforces the length==0, 16-bit overflow, and per-request-limit
// rules common to every range read, ahead of any address lookup.
func checkRange(start, length uint16, maxPerRequest int) error {
	if length == 0 {
		return ErrOutOfRange
	}
	if int(length) > maxPerRequest {
		return ErrOutOfRange
	}
	if uint32(start)+uint32(length)-1 > 0xFFFF {
		return ErrOutOfRange
	}
	return nil
}

func bitPatternValue(pattern Pattern) bool {
	switch pattern {
	case PatternOnes:
		return true
	case PatternRandom:
		return rand.Intn(2) == 1
	default:
		return false
	}
}

func wordPatternValue(pattern Pattern, i, count int) (uint16, error) {
	switch pattern {
	case PatternZeros:
		return 0, nil
	case PatternOnes:
		return 1, nil
	case PatternMax:
		return 0xFFFF, nil
	case PatternIncremental:
		return uint16(i), nil
	case PatternDecremental:
		return uint16(count - i), nil
	case PatternRandom:
		return uint16(rand.Intn(1 << 16)), nil
	default:
		return 0, ErrInvalidArgument
	}
}

func searchCoil(s []*Coil, address uint16) (int, bool) {
	idx := sort.Search(len(s), func(i int) bool { return s[i].address >= address })
	return idx, idx < len(s) && s[idx].address == address
}

func searchDiscreteInput(s []*DiscreteInput, address uint16) (int, bool) {
	idx := sort.Search(len(s), func(i int) bool { return s[i].address >= address })
	return idx, idx < len(s) && s[idx].address == address
}

func searchHoldingRegister(s []*HoldingRegister, address uint16) (int, bool) {
	idx := sort.Search(len(s), func(i int) bool { return s[i].address >= address })
	return idx, idx < len(s) && s[idx].address == address
}

func searchInputRegister(s []*InputRegister, address uint16) (int, bool) {
	idx := sort.Search(len(s), func(i int) bool { return s[i].address >= address })
	return idx, idx < len(s) && s[idx].address == address
}
