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

import "testing"

func TestCoil(t *testing.T) {
	c := &Coil{address: 10, value: false}

	if c.Address() != 10 {
		t.Errorf("Address: expected 10, got %d", c.Address())
	}
	if c.Value() != false {
		t.Error("Value: expected false")
	}

	c.Set(true)
	if c.Value() != true {
		t.Error("Value after Set(true): expected true")
	}
}

func TestDiscreteInput(t *testing.T) {
	d := &DiscreteInput{address: 5, value: true}

	if d.Address() != 5 {
		t.Errorf("Address: expected 5, got %d", d.Address())
	}
	if !d.Value() {
		t.Error("Value: expected true")
	}

	d.Set(false)
	if d.Value() {
		t.Error("Value after Set(false): expected false")
	}
}

func TestHoldingRegister(t *testing.T) {
	h := &HoldingRegister{address: 100, value: 1234}

	if h.Address() != 100 {
		t.Errorf("Address: expected 100, got %d", h.Address())
	}
	if h.Value() != 1234 {
		t.Errorf("Value: expected 1234, got %d", h.Value())
	}

	h.Set(5678)
	if h.Value() != 5678 {
		t.Errorf("Value after Set: expected 5678, got %d", h.Value())
	}
}

func TestInputRegister(t *testing.T) {
	r := &InputRegister{address: 200, value: 42}

	if r.Address() != 200 {
		t.Errorf("Address: expected 200, got %d", r.Address())
	}
	if r.Value() != 42 {
		t.Errorf("Value: expected 42, got %d", r.Value())
	}

	r.Set(84)
	if r.Value() != 84 {
		t.Errorf("Value after Set: expected 84, got %d", r.Value())
	}
}
