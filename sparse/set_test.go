package sparse

import "testing"

func TestSetAddHas(t *testing.T) {
	s := NewSet(1 << 10)
	for _, x := range []uint32{5, 5, 1, 1023, 0} {
		s.Add(x)
	}
	if got, want := s.Len(), 4; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
	for _, x := range []uint32{5, 1, 1023, 0} {
		if !s.Has(x) {
			t.Errorf("Has(%d) = false, want true", x)
		}
	}
	if s.Has(2) {
		t.Errorf("Has(2) = true, want false")
	}
	dense := s.Dense()
	want := []uint32{5, 1, 1023, 0}
	if len(dense) != len(want) {
		t.Fatalf("Dense() = %v, want %v", dense, want)
	}
	for i, x := range want {
		if dense[i] != x {
			t.Errorf("Dense()[%d] = %d, want %d", i, dense[i], x)
		}
	}
}

func TestSetReset(t *testing.T) {
	s := NewSet(16)
	s.Add(3)
	s.Add(4)
	s.Reset()
	if s.Len() != 0 {
		t.Fatalf("Len() after Reset = %d, want 0", s.Len())
	}
	if s.Has(3) || s.Has(4) {
		t.Fatalf("Has returns true after Reset")
	}
	// Stale sparse[3]/sparse[4] entries must not resurrect membership
	// when the dense array is reused for unrelated indices.
	s.Add(0)
	s.Add(1)
	if s.Has(3) {
		t.Fatalf("Has(3) = true after reuse, want false")
	}
}
