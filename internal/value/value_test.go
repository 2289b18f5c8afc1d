package value

import "testing"

func TestAdd(t *testing.T) {
	tests := []struct {
		name     string
		lhs, rhs Value
		want     Value
		wantErr  bool
	}{
		{"int+int", int64(1), int64(2), int64(3), false},
		{"int+float", int64(1), 2.5, 3.5, false},
		{"bytes+bytes", []byte("a"), []byte("b"), []byte("ab"), false},
		{"bool+bool", true, false, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Add(tt.lhs, tt.rhs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Add(%v,%v) err = %v, wantErr %v", tt.lhs, tt.rhs, err, tt.wantErr)
			}
			if err == nil && !EqualLossy(got, tt.want) {
				t.Fatalf("Add(%v,%v) = %v, want %v", tt.lhs, tt.rhs, got, tt.want)
			}
		})
	}
}

func TestDivByZero(t *testing.T) {
	if _, err := Div(int64(1), int64(0)); err == nil {
		t.Fatal("expected division by zero error")
	}
}

func TestRemByZero(t *testing.T) {
	if _, err := Rem(int64(1), int64(0)); err == nil {
		t.Fatal("expected modulo by zero error")
	}
}

func TestMerge(t *testing.T) {
	lhs := Object{"a": int64(1), "b": int64(2)}
	rhs := Object{"b": int64(3), "c": int64(4)}
	got, err := Merge(lhs, rhs)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	obj := got.(Object)
	if obj["b"] != int64(3) {
		t.Fatalf("expected right side to win on conflicting key, got %v", obj["b"])
	}
	if obj["a"] != int64(1) || obj["c"] != int64(4) {
		t.Fatalf("unexpected merge result: %v", obj)
	}
}

func TestMergeRejectsNonObjects(t *testing.T) {
	if _, err := Merge(int64(1), Object{}); err == nil {
		t.Fatal("expected merge to reject non-object operands")
	}
}

func TestEqualLossyCoercesNumerics(t *testing.T) {
	if !EqualLossy(int64(3), 3.0) {
		t.Fatal("expected 3 == 3.0 under lossy equality")
	}
	if EqualLossy(nil, int64(0)) {
		t.Fatal("Null should equal only Null")
	}
}

func TestNegateRejectsNonFloat(t *testing.T) {
	if _, err := Negate(int64(1)); err == nil {
		t.Fatal("expected negate to reject non-float")
	}
	got, err := Negate(2.5)
	if err != nil || got != -2.5 {
		t.Fatalf("Negate(2.5) = %v, %v", got, err)
	}
}

func TestNotRejectsNonBoolean(t *testing.T) {
	if _, err := Not(int64(1)); err == nil {
		t.Fatal("expected not to reject non-boolean")
	}
}

func TestCloneDeepCopiesCollections(t *testing.T) {
	orig := Object{"nested": []Value{int64(1), int64(2)}}
	cloned := Clone(orig).(Object)
	nested := cloned["nested"].([]Value)
	nested[0] = int64(99)
	if orig["nested"].([]Value)[0] == int64(99) {
		t.Fatal("Clone should deep-copy nested arrays")
	}
}
