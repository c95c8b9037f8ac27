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
	"context"
	"net"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	client, err := NewClient("localhost:502")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer client.Close()

	if client.State() != StateDisconnected {
		t.Errorf("Initial state should be Disconnected, got %v", client.State())
	}
}

func TestClientWithOptions(t *testing.T) {
	client, err := NewClient("localhost:502",
		WithUnitID(5),
		WithTimeout(10*time.Second),
		WithAutoReconnect(true),
		WithMaxRetries(5),
	)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer client.Close()

	if client.unitID != 5 {
		t.Errorf("UnitID: expected 5, got %d", client.unitID)
	}
	if client.opts.timeout != 10*time.Second {
		t.Errorf("Timeout: expected 10s, got %v", client.opts.timeout)
	}
	if !client.opts.autoReconnect {
		t.Error("AutoReconnect should be true")
	}
	if client.opts.maxRetries != 5 {
		t.Errorf("MaxRetries: expected 5, got %d", client.opts.maxRetries)
	}
}

func TestClientSetUnitID(t *testing.T) {
	client, err := NewClient("localhost:502")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer client.Close()

	client.SetUnitID(10)
	if client.unitID != 10 {
		t.Errorf("UnitID: expected 10, got %d", client.unitID)
	}
}

func TestClientConnectNotRunning(t *testing.T) {
	client, err := NewClient("localhost:59999") // Non-existent server
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	err = client.Connect(ctx)
	if err == nil {
		t.Error("Expected connection error")
	}
}

func TestClientMetrics(t *testing.T) {
	client, err := NewClient("localhost:502")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer client.Close()

	metrics := client.Metrics()
	if metrics == nil {
		t.Error("Metrics should not be nil")
	}

	collected := metrics.Collect()
	if collected["requests_total"] != int64(0) {
		t.Errorf("Initial requests_total should be 0, got %v", collected["requests_total"])
	}
}

// Integration test - drives a real Client against a real Server/DataArea
// over a loopback TCP connection.
func TestClientIntegration(t *testing.T) {
	area := NewDataArea()
	for i := uint16(0); i < 16; i++ {
		if err := area.InsertCoil(i, false); err != nil {
			t.Fatalf("InsertCoil(%d) failed: %v", i, err)
		}
	}
	if err := area.InsertHoldingRegister(0, 1234); err != nil {
		t.Fatalf("InsertHoldingRegister(0) failed: %v", err)
	}
	if err := area.InsertHoldingRegister(1, 5678); err != nil {
		t.Fatalf("InsertHoldingRegister(1) failed: %v", err)
	}
	for i := uint16(10); i < 200; i++ {
		if err := area.InsertHoldingRegister(i, 0); err != nil {
			t.Fatalf("InsertHoldingRegister(%d) failed: %v", i, err)
		}
	}
	if err := area.WriteSingleCoil(1, 0, true); err != nil {
		t.Fatalf("WriteSingleCoil(0) failed: %v", err)
	}

	server := NewServer(area)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	go server.Serve(listener)
	defer server.Close()

	addr := listener.Addr().String()

	client, err := NewClient(addr, WithUnitID(1))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer client.Close()

	ctx := context.Background()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	t.Run("ReadHoldingRegisters", func(t *testing.T) {
		regs, err := client.ReadHoldingRegisters(ctx, 0, 2)
		if err != nil {
			t.Fatalf("ReadHoldingRegisters failed: %v", err)
		}
		if len(regs) != 2 {
			t.Errorf("Expected 2 registers, got %d", len(regs))
		}
		if regs[0] != 1234 {
			t.Errorf("Register[0]: expected 1234, got %d", regs[0])
		}
		if regs[1] != 5678 {
			t.Errorf("Register[1]: expected 5678, got %d", regs[1])
		}
	})

	t.Run("ReadCoils", func(t *testing.T) {
		coils, err := client.ReadCoils(ctx, 0, 8)
		if err != nil {
			t.Fatalf("ReadCoils failed: %v", err)
		}
		if len(coils) != 8 {
			t.Errorf("Expected 8 coils, got %d", len(coils))
		}
		if !coils[0] {
			t.Error("Coil[0] should be true")
		}
	})

	t.Run("WriteSingleRegister", func(t *testing.T) {
		if err := client.WriteSingleRegister(ctx, 10, 9999); err != nil {
			t.Fatalf("WriteSingleRegister failed: %v", err)
		}

		regs, err := client.ReadHoldingRegisters(ctx, 10, 1)
		if err != nil {
			t.Fatalf("ReadHoldingRegisters failed: %v", err)
		}
		if regs[0] != 9999 {
			t.Errorf("Register[10]: expected 9999, got %d", regs[0])
		}
	})

	t.Run("WriteSingleCoil", func(t *testing.T) {
		if err := client.WriteSingleCoil(ctx, 5, true); err != nil {
			t.Fatalf("WriteSingleCoil failed: %v", err)
		}

		coils, err := client.ReadCoils(ctx, 5, 1)
		if err != nil {
			t.Fatalf("ReadCoils failed: %v", err)
		}
		if !coils[0] {
			t.Error("Coil[5] should be true")
		}
	})

	t.Run("WriteMultipleRegisters", func(t *testing.T) {
		values := []uint16{111, 222, 333}
		if err := client.WriteMultipleRegisters(ctx, 100, values); err != nil {
			t.Fatalf("WriteMultipleRegisters failed: %v", err)
		}

		regs, err := client.ReadHoldingRegisters(ctx, 100, 3)
		if err != nil {
			t.Fatalf("ReadHoldingRegisters failed: %v", err)
		}
		for i, v := range values {
			if regs[i] != v {
				t.Errorf("Register[%d]: expected %d, got %d", 100+i, v, regs[i])
			}
		}
	})

	t.Run("WriteMultipleCoils", func(t *testing.T) {
		values := []bool{true, false, true, false, true}
		if err := client.WriteMultipleCoils(ctx, 8, values); err != nil {
			t.Fatalf("WriteMultipleCoils failed: %v", err)
		}

		coils, err := client.ReadCoils(ctx, 8, 5)
		if err != nil {
			t.Fatalf("ReadCoils failed: %v", err)
		}
		for i, v := range values {
			if coils[i] != v {
				t.Errorf("Coil[%d]: expected %v, got %v", 8+i, v, coils[i])
			}
		}
	})

	t.Run("ReadUnknownAddressFails", func(t *testing.T) {
		if _, err := client.ReadHoldingRegisters(ctx, 9000, 1); err == nil {
			t.Error("expected an exception reading an address never inserted")
		}
	})
}
