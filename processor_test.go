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
	"bytes"
	"testing"
)

func allTrueCoils(area *DataArea, n int) {
	for i := 0; i < n; i++ {
		if err := area.InsertCoil(uint16(i), true); err != nil {
			panic(err)
		}
	}
}

func TestProcessRequest_Read8CoilsAllTrue(t *testing.T) {
	area := NewDataArea()
	allTrueCoils(area, 10)

	resp := ProcessRequest([]byte{0x01, 0x00, 0x01, 0x00, 0x08}, area, 1)
	expect := []byte{0x01, 0x01, 0xFF}
	if !bytes.Equal(resp, expect) {
		t.Errorf("expected %x, got %x", expect, resp)
	}
}

func TestProcessRequest_Read9CoilsAllTrue(t *testing.T) {
	area := NewDataArea()
	allTrueCoils(area, 10)

	resp := ProcessRequest([]byte{0x01, 0x00, 0x01, 0x00, 0x09}, area, 1)
	expect := []byte{0x01, 0x02, 0xFF, 0x01}
	if !bytes.Equal(resp, expect) {
		t.Errorf("expected %x, got %x", expect, resp)
	}
}

func TestProcessRequest_Read10HoldingRegisters(t *testing.T) {
	area := NewDataArea()
	for i := uint16(0); i < 10; i++ {
		if err := area.InsertHoldingRegister(i, i+1); err != nil {
			t.Fatalf("InsertHoldingRegister(%d) failed: %v", i, err)
		}
	}

	resp := ProcessRequest([]byte{0x03, 0x00, 0x00, 0x00, 0x0A}, area, 1)
	expect := []byte{
		0x03, 0x14,
		0x00, 0x01, 0x00, 0x02, 0x00, 0x03, 0x00, 0x04, 0x00, 0x05,
		0x00, 0x06, 0x00, 0x07, 0x00, 0x08, 0x00, 0x09, 0x00, 0x0A,
	}
	if !bytes.Equal(resp, expect) {
		t.Errorf("expected %x, got %x", expect, resp)
	}
}

func TestProcessRequest_ReadCoilsInvalidAddress(t *testing.T) {
	area := NewDataArea()
	allTrueCoils(area, 10)

	resp := ProcessRequest([]byte{0x01, 0x00, 0x0F, 0x00, 0x0A}, area, 1)
	expect := []byte{0x81, 0x02}
	if !bytes.Equal(resp, expect) {
		t.Errorf("expected %x, got %x", expect, resp)
	}
}

func TestProcessRequest_WriteSingleCoilTrue(t *testing.T) {
	area := NewDataArea()
	for i := uint16(0); i < 4; i++ {
		if err := area.InsertCoil(i, false); err != nil {
			t.Fatalf("InsertCoil(%d) failed: %v", i, err)
		}
	}

	resp := ProcessRequest([]byte{0x05, 0x00, 0x01, 0xFF, 0x00}, area, 1)
	expect := []byte{0x05, 0x00, 0x01, 0xFF, 0x00}
	if !bytes.Equal(resp, expect) {
		t.Errorf("expected %x, got %x", expect, resp)
	}

	values, err := area.ReadCoils(1, 1, 1)
	if err != nil {
		t.Fatalf("ReadCoils failed: %v", err)
	}
	if !values[0] {
		t.Error("coil 1 should now read true")
	}
}

func TestProcessRequest_UnknownFunctionCode(t *testing.T) {
	area := NewDataArea()
	resp := ProcessRequest([]byte{0x2C, 0x00, 0x01, 0x00, 0x0A}, area, 1)
	expect := []byte{0xAC, 0x01}
	if !bytes.Equal(resp, expect) {
		t.Errorf("expected %x, got %x", expect, resp)
	}
}

func TestProcessRequest_EmptyPDU(t *testing.T) {
	area := NewDataArea()
	resp := ProcessRequest(nil, area, 1)
	expect := []byte{0x80, 0x01}
	if !bytes.Equal(resp, expect) {
		t.Errorf("expected %x, got %x", expect, resp)
	}
}

func TestProcessRequest_ReadQuantityZero(t *testing.T) {
	area := NewDataArea()
	resp := ProcessRequest([]byte{0x03, 0x00, 0x00, 0x00, 0x00}, area, 1)
	if resp[0] != byte(FuncReadHoldingRegisters)|0x80 || resp[1] != byte(ExceptionIllegalDataValue) {
		t.Errorf("expected exception 0x03, got %x", resp)
	}
}

func TestProcessRequest_ReadCoils2000FullyPopulated(t *testing.T) {
	area := NewDataArea()
	allTrueCoils(area, MaxQuantityCoils)

	resp := ProcessRequest([]byte{0x01, 0x00, 0x00, 0x07, 0xD0}, area, 1)
	if len(resp) != 252 {
		t.Fatalf("expected 252 bytes, got %d", len(resp))
	}
	if resp[1] != 0xFA {
		t.Errorf("expected byte_count 0xFA, got 0x%02X", resp[1])
	}
}

func TestProcessRequest_ReadCoils2001Exceeds(t *testing.T) {
	area := NewDataArea()
	resp := ProcessRequest([]byte{0x01, 0x00, 0x00, 0x07, 0xD1}, area, 1)
	if resp[0] != byte(FuncReadCoils)|0x80 || resp[1] != byte(ExceptionIllegalDataValue) {
		t.Errorf("expected exception 0x03, got %x", resp)
	}
}

func TestProcessRequest_ReadHoldingRegisters125FullyPopulated(t *testing.T) {
	area := NewDataArea()
	for i := uint16(0); i < MaxQuantityRegisters; i++ {
		if err := area.InsertHoldingRegister(i, 0); err != nil {
			t.Fatalf("InsertHoldingRegister(%d) failed: %v", i, err)
		}
	}

	resp := ProcessRequest([]byte{0x03, 0x00, 0x00, 0x00, 0x7D}, area, 1)
	if len(resp) != 252 {
		t.Fatalf("expected 252 bytes, got %d", len(resp))
	}
	if resp[1] != 0xFA {
		t.Errorf("expected byte_count 0xFA, got 0x%02X", resp[1])
	}
}

func TestProcessRequest_WriteSingleCoilIllegalValue(t *testing.T) {
	area := NewDataArea()
	if err := area.InsertCoil(0, false); err != nil {
		t.Fatalf("InsertCoil failed: %v", err)
	}

	resp := ProcessRequest([]byte{0x05, 0x00, 0x00, 0xFF, 0x01}, area, 1)
	if resp[0] != byte(FuncWriteSingleCoil)|0x80 || resp[1] != byte(ExceptionIllegalDataValue) {
		t.Errorf("expected exception 0x03, got %x", resp)
	}
}

func TestProcessRequest_WriteMultipleCoilsByteCountMismatch(t *testing.T) {
	area := NewDataArea()
	for i := uint16(0); i < 16; i++ {
		if err := area.InsertCoil(i, false); err != nil {
			t.Fatalf("InsertCoil(%d) failed: %v", i, err)
		}
	}

	// qty=16 needs byte_count=2, but the request claims 3.
	data := []byte{0x0F, 0x00, 0x00, 0x00, 0x10, 0x03, 0x00, 0x00, 0x00}
	resp := ProcessRequest(data, area, 1)
	if resp[0] != byte(FuncWriteMultipleCoils)|0x80 || resp[1] != byte(ExceptionIllegalDataValue) {
		t.Errorf("expected exception 0x03, got %x", resp)
	}
}

func TestProcessRequest_WriteMultipleCoilsExceedsMax(t *testing.T) {
	area := NewDataArea()
	data := []byte{0x0F, 0x00, 0x00, 0x07, 0xB1, 0xF7}
	resp := ProcessRequest(data, area, 1)
	if resp[0] != byte(FuncWriteMultipleCoils)|0x80 || resp[1] != byte(ExceptionIllegalDataValue) {
		t.Errorf("expected exception 0x03 for qty > %d, got %x", MaxWriteMultipleCoils, resp)
	}
}

func TestProcessRequest_WriteMultipleRegistersRoundTrip(t *testing.T) {
	area := NewDataArea()
	for i := uint16(0); i < 3; i++ {
		if err := area.InsertHoldingRegister(i, 0); err != nil {
			t.Fatalf("InsertHoldingRegister(%d) failed: %v", i, err)
		}
	}

	data := []byte{0x10, 0x00, 0x00, 0x00, 0x03, 0x06, 0x00, 0x0A, 0x00, 0x14, 0x00, 0x1E}
	resp := ProcessRequest(data, area, 1)
	expect := []byte{0x10, 0x00, 0x00, 0x00, 0x03}
	if !bytes.Equal(resp, expect) {
		t.Errorf("expected %x, got %x", expect, resp)
	}

	values, err := area.ReadHoldingRegisters(1, 0, 3)
	if err != nil {
		t.Fatalf("ReadHoldingRegisters failed: %v", err)
	}
	if values[0] != 10 || values[1] != 20 || values[2] != 30 {
		t.Errorf("unexpected values: %v", values)
	}
}
