package kernel

import "testing"

func TestFIFOWriteReadNonBlocking(t *testing.T) {
	k := New(testConfig())
	if err := k.FIFOInit(0); err != nil {
		t.Fatal(err)
	}
	idle := &Thread{k: k, slot: 0, id: k.threads[0].id}

	for _, v := range []uint32{10, 20, 30} {
		if err := k.FIFOWrite(0, v); err != nil {
			t.Fatal(err)
		}
	}
	for _, want := range []uint32{10, 20, 30} {
		if got := k.FIFORead(idle, 0); got != want {
			t.Fatalf("FIFORead() = %d, want %d", got, want)
		}
	}
}

func TestFIFOOverflowDropsAndCounts(t *testing.T) {
	cfg := testConfig()
	cfg.FIFOCapacity = 2
	k := New(cfg)
	if err := k.FIFOInit(0); err != nil {
		t.Fatal(err)
	}

	for i := uint32(0); i < 4; i++ {
		if err := k.FIFOWrite(0, i); err != nil {
			t.Fatal(err)
		}
	}
	if got := k.FIFOLost(0); got != 2 {
		t.Fatalf("FIFOLost() = %d after writing 2 past a capacity-2 fifo, want 2", got)
	}

	idle := &Thread{k: k, slot: 0, id: k.threads[0].id}
	if got := k.FIFORead(idle, 0); got != 0 {
		t.Fatalf("FIFORead() = %d, want the oldest surviving value 0", got)
	}
	if got := k.FIFORead(idle, 0); got != 1 {
		t.Fatalf("FIFORead() = %d, want 1", got)
	}
}

func TestFIFOInitRejectsOutOfRangeIndex(t *testing.T) {
	k := New(testConfig())
	if err := k.FIFOInit(k.cfg.MaxFIFOs); err != IRQInvalid {
		t.Fatalf("FIFOInit(out of range) = %v, want IRQInvalid", err)
	}
}
