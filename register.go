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

// Coil is a single writable bit, addressed 0..65535.
type Coil struct {
	address uint16
	value   bool
}

// Address returns the coil's address.
func (c *Coil) Address() uint16 { return c.address }

// Value returns the coil's current value.
func (c *Coil) Value() bool { return c.value }

// Set updates the coil's value in place.
func (c *Coil) Set(v bool) { c.value = v }

// DiscreteInput is a single read-only bit. The server never writes one in
// response to a client request; only the owning application mutates it.
type DiscreteInput struct {
	address uint16
	value   bool
}

// Address returns the discrete input's address.
func (d *DiscreteInput) Address() uint16 { return d.address }

// Value returns the discrete input's current value.
func (d *DiscreteInput) Value() bool { return d.value }

// Set updates the discrete input's value. Called only by the owning
// application, never by the PDU processor.
func (d *DiscreteInput) Set(v bool) { d.value = v }

// HoldingRegister is a single writable 16-bit word.
type HoldingRegister struct {
	address uint16
	value   uint16
}

// Address returns the holding register's address.
func (h *HoldingRegister) Address() uint16 { return h.address }

// Value returns the holding register's current value.
func (h *HoldingRegister) Value() uint16 { return h.value }

// Set updates the holding register's value in place.
func (h *HoldingRegister) Set(v uint16) { h.value = v }

// InputRegister is a single read-only 16-bit word. The server never writes
// one in response to a client request; only the owning application mutates
// it.
type InputRegister struct {
	address uint16
	value   uint16
}

// Address returns the input register's address.
func (i *InputRegister) Address() uint16 { return i.address }

// Value returns the input register's current value.
func (i *InputRegister) Value() uint16 { return i.value }

// Set updates the input register's value. Called only by the owning
// application, never by the PDU processor.
func (i *InputRegister) Set(v uint16) { i.value = v }
