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
	"net"
	"testing"
	"time"
)

func TestNewServer(t *testing.T) {
	area := NewDataArea()
	server := NewServer(area)

	if server == nil {
		t.Fatal("NewServer returned nil")
	}
}

func TestServer_ProcessRequest_MBAPEcho(t *testing.T) {
	area := NewDataArea()
	for i := uint16(0); i < 10; i++ {
		if err := area.InsertCoil(i, true); err != nil {
			t.Fatalf("InsertCoil(%d) failed: %v", i, err)
		}
	}
	server := NewServer(area)

	req := &Frame{
		Header: MBAPHeader{TransactionID: 1, ProtocolID: 0, UnitID: 1},
		PDU:    []byte{0x01, 0x00, 0x01, 0x00, 0x08},
	}

	resp := server.processRequest(req)
	encoded := resp.Encode()

	expectedHeader := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x04, 0x01}
	if !bytes.Equal(encoded[:7], expectedHeader) {
		t.Errorf("header: expected %x, got %x", expectedHeader, encoded[:7])
	}

	expectedPDU := []byte{0x01, 0x01, 0xFF}
	if !bytes.Equal(encoded[7:], expectedPDU) {
		t.Errorf("PDU: expected %x, got %x", expectedPDU, encoded[7:])
	}
}

func TestServer_ProcessRequest_EmptyPDU(t *testing.T) {
	area := NewDataArea()
	server := NewServer(area)

	req := &Frame{Header: MBAPHeader{TransactionID: 7, UnitID: 1}, PDU: nil}
	resp := server.processRequest(req)

	expect := []byte{0x80, 0x01}
	if !bytes.Equal(resp.PDU, expect) {
		t.Errorf("expected %x, got %x", expect, resp.PDU)
	}
}

func TestServerAddr(t *testing.T) {
	area := NewDataArea()
	server := NewServer(area)

	if server.Addr() != nil {
		t.Error("Addr should be nil before listening")
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	expectedAddr := listener.Addr()

	go server.Serve(listener)
	defer server.Close()

	time.Sleep(10 * time.Millisecond)

	addr := server.Addr()
	if addr == nil {
		t.Error("Addr should not be nil after listening")
	} else if addr.String() != expectedAddr.String() {
		t.Errorf("Addr mismatch: expected %s, got %s", expectedAddr, addr)
	}
}

func TestServer_ActiveConnections(t *testing.T) {
	area := NewDataArea()
	server := NewServer(area)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	go server.Serve(listener)
	defer server.Close()

	conn, err := net.Dial("tcp", listener.Addr().String())
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	time.Sleep(10 * time.Millisecond)

	if server.ActiveConnections() != 1 {
		t.Errorf("expected 1 active connection, got %d", server.ActiveConnections())
	}
}

func TestServer_MaxConnections(t *testing.T) {
	area := NewDataArea()
	server := NewServer(area, WithMaxConnections(1))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	go server.Serve(listener)
	defer server.Close()

	conn1, err := net.Dial("tcp", listener.Addr().String())
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn1.Close()

	time.Sleep(10 * time.Millisecond)

	conn2, err := net.Dial("tcp", listener.Addr().String())
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn2.Close()

	// The server should accept then immediately close the second connection.
	conn2.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 1)
	if _, err := conn2.Read(buf); err == nil {
		t.Error("expected the second connection to be closed by the server")
	}
}
