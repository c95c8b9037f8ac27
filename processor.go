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

import "errors"

// MaxWriteMultipleCoils is the per-request ceiling for Write Multiple Coils.
const MaxWriteMultipleCoils = 1968

// ErrShortPDU indicates a request PDU was too small to contain its
// function-specific fields.
var ErrShortPDU = errors.New("modbus: short PDU")

// ProcessRequest is the stateless PDU processor: given a request PDU
// (function code followed by function-specific data) and a Handler backing
// the register store, it returns the response PDU. Every fault is
// converted into a well-formed exception PDU; ProcessRequest itself never
// returns an error.
func ProcessRequest(pdu []byte, handler Handler, unitID UnitID) []byte {
	if len(pdu) == 0 {
		return exceptionPDU(0, ExceptionIllegalFunction)
	}
	fc := FunctionCode(pdu[0])
	data := pdu[1:]

	switch fc {
	case FuncReadCoils:
		return processReadBits(fc, data, unitID, MaxQuantityCoils, handler.ReadCoils)
	case FuncReadDiscreteInputs:
		return processReadBits(fc, data, unitID, MaxQuantityDiscreteInputs, handler.ReadDiscreteInputs)
	case FuncReadHoldingRegisters:
		return processReadWords(fc, data, unitID, MaxQuantityRegisters, handler.ReadHoldingRegisters)
	case FuncReadInputRegisters:
		return processReadWords(fc, data, unitID, MaxQuantityRegisters, handler.ReadInputRegisters)
	case FuncWriteSingleCoil:
		return processWriteSingleCoil(data, unitID, handler)
	case FuncWriteSingleRegister:
		return processWriteSingleRegister(data, unitID, handler)
	case FuncWriteMultipleCoils:
		return processWriteMultipleCoils(data, unitID, handler)
	case FuncWriteMultipleRegisters:
		return processWriteMultipleRegisters(data, unitID, handler)
	default:
		return exceptionPDU(fc, ExceptionIllegalFunction)
	}
}

func exceptionPDU(fc FunctionCode, ec ExceptionCode) []byte {
	return []byte{byte(fc) | 0x80, byte(ec)}
}

func decodeU16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

func encodeU16(v uint16) [2]byte {
	return [2]byte{byte(v >> 8), byte(v)}
}

// packBits packs values into a byte_count/packed-bits response, the first
// requested bit in bit 0 of the first byte.
func packBits(values []bool) []byte {
	byteCount := (len(values) + 7) / 8
	out := make([]byte, 1+byteCount)
	out[0] = byte(byteCount)
	for i, v := range values {
		if v {
			out[1+i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

// unpackBits unpacks qty bits from data, the first bit in bit 0 of data[0].
func unpackBits(data []byte, qty int) []bool {
	out := make([]bool, qty)
	for i := range out {
		out[i] = data[i/8]&(1<<uint(i%8)) != 0
	}
	return out
}

func processReadBits(fc FunctionCode, data []byte, unitID UnitID, maxQty int, read func(UnitID, uint16, uint16) ([]bool, error)) []byte {
	if len(data) < 4 {
		return exceptionPDU(fc, ExceptionIllegalDataValue)
	}
	start := decodeU16(data[0:2])
	qty := decodeU16(data[2:4])
	if qty == 0 || int(qty) > maxQty {
		return exceptionPDU(fc, ExceptionIllegalDataValue)
	}
	values, err := read(unitID, start, qty)
	if err != nil {
		return exceptionPDU(fc, ExceptionIllegalDataAddress)
	}
	return append([]byte{byte(fc)}, packBits(values)...)
}

func processReadWords(fc FunctionCode, data []byte, unitID UnitID, maxQty int, read func(UnitID, uint16, uint16) ([]uint16, error)) []byte {
	if len(data) < 4 {
		return exceptionPDU(fc, ExceptionIllegalDataValue)
	}
	start := decodeU16(data[0:2])
	qty := decodeU16(data[2:4])
	if qty == 0 || int(qty) > maxQty {
		return exceptionPDU(fc, ExceptionIllegalDataValue)
	}
	values, err := read(unitID, start, qty)
	if err != nil {
		return exceptionPDU(fc, ExceptionIllegalDataAddress)
	}
	resp := make([]byte, 2, 2+2*len(values))
	resp[0] = byte(fc)
	resp[1] = byte(2 * len(values))
	for _, v := range values {
		b := encodeU16(v)
		resp = append(resp, b[0], b[1])
	}
	return resp
}

func processWriteSingleCoil(data []byte, unitID UnitID, handler Handler) []byte {
	if len(data) < 4 {
		return exceptionPDU(FuncWriteSingleCoil, ExceptionIllegalDataValue)
	}
	address := decodeU16(data[0:2])
	raw := decodeU16(data[2:4])
	var value bool
	switch raw {
	case CoilOn:
		value = true
	case CoilOff:
		value = false
	default:
		return exceptionPDU(FuncWriteSingleCoil, ExceptionIllegalDataValue)
	}
	if err := handler.WriteSingleCoil(unitID, address, value); err != nil {
		return exceptionPDU(FuncWriteSingleCoil, ExceptionIllegalDataAddress)
	}
	resp := make([]byte, 5)
	resp[0] = byte(FuncWriteSingleCoil)
	copy(resp[1:], data[0:4])
	return resp
}

func processWriteSingleRegister(data []byte, unitID UnitID, handler Handler) []byte {
	if len(data) < 4 {
		return exceptionPDU(FuncWriteSingleRegister, ExceptionIllegalDataValue)
	}
	address := decodeU16(data[0:2])
	value := decodeU16(data[2:4])
	if err := handler.WriteSingleRegister(unitID, address, value); err != nil {
		return exceptionPDU(FuncWriteSingleRegister, ExceptionIllegalDataAddress)
	}
	resp := make([]byte, 5)
	resp[0] = byte(FuncWriteSingleRegister)
	copy(resp[1:], data[0:4])
	return resp
}

func processWriteMultipleCoils(data []byte, unitID UnitID, handler Handler) []byte {
	if len(data) < 5 {
		return exceptionPDU(FuncWriteMultipleCoils, ExceptionIllegalDataValue)
	}
	start := decodeU16(data[0:2])
	qty := decodeU16(data[2:4])
	byteCount := data[4]

	if qty == 0 || int(qty) > MaxWriteMultipleCoils {
		return exceptionPDU(FuncWriteMultipleCoils, ExceptionIllegalDataValue)
	}
	if int(byteCount) != (int(qty)+7)/8 {
		return exceptionPDU(FuncWriteMultipleCoils, ExceptionIllegalDataValue)
	}
	if len(data)-5 < int(byteCount) {
		return exceptionPDU(FuncWriteMultipleCoils, ExceptionIllegalDataValue)
	}

	values := unpackBits(data[5:5+int(byteCount)], int(qty))
	if err := handler.WriteMultipleCoils(unitID, start, values); err != nil {
		return exceptionPDU(FuncWriteMultipleCoils, ExceptionIllegalDataAddress)
	}

	resp := make([]byte, 5)
	resp[0] = byte(FuncWriteMultipleCoils)
	copy(resp[1:3], data[0:2])
	copy(resp[3:5], data[2:4])
	return resp
}

func processWriteMultipleRegisters(data []byte, unitID UnitID, handler Handler) []byte {
	if len(data) < 5 {
		return exceptionPDU(FuncWriteMultipleRegisters, ExceptionIllegalDataValue)
	}
	start := decodeU16(data[0:2])
	qty := decodeU16(data[2:4])
	byteCount := data[4]

	if qty == 0 || int(qty) > MaxQuantityWriteRegisters {
		return exceptionPDU(FuncWriteMultipleRegisters, ExceptionIllegalDataValue)
	}
	if int(byteCount) != 2*int(qty) {
		return exceptionPDU(FuncWriteMultipleRegisters, ExceptionIllegalDataValue)
	}
	if len(data)-5 < int(byteCount) {
		return exceptionPDU(FuncWriteMultipleRegisters, ExceptionIllegalDataValue)
	}

	values := make([]uint16, qty)
	body := data[5:]
	for i := range values {
		values[i] = decodeU16(body[2*i : 2*i+2])
	}
	if err := handler.WriteMultipleRegisters(unitID, start, values); err != nil {
		return exceptionPDU(FuncWriteMultipleRegisters, ExceptionIllegalDataAddress)
	}

	resp := make([]byte, 5)
	resp[0] = byte(FuncWriteMultipleRegisters)
	copy(resp[1:3], data[0:2])
	copy(resp[3:5], data[2:4])
	return resp
}
