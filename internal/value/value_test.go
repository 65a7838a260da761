package value

import "testing"

func TestAdd(t *testing.T) {
	tests := []struct {
		left, right Value
		expected    Value
	}{
		{&Integer{Value: 2}, &Integer{Value: 3}, &Integer{Value: 5}},
		{&Integer{Value: 2}, &Number{Value: 0.5}, &Number{Value: 2.5}},
		{&Number{Value: 1.5}, &Number{Value: 1.5}, &Number{Value: 3}},
		{&Boolean{Value: true}, &Integer{Value: 1}, &Number{Value: 2}},
		{&String{Value: "a"}, &String{Value: "b"}, &String{Value: "ab"}},
		{&String{Value: "n="}, &Integer{Value: 3}, &String{Value: "n=3"}},
	}

	for i, tt := range tests {
		got := Add(tt.left, tt.right)
		if got.Type() != tt.expected.Type() || got.Inspect() != tt.expected.Inspect() {
			t.Errorf("tests[%d]: got %s %s, want %s %s",
				i, got.Type(), got.Inspect(), tt.expected.Type(), tt.expected.Inspect())
		}
	}
}

func TestSubMulStringsFail(t *testing.T) {
	if got := Sub(&String{Value: "a"}, &Integer{Value: 1}); !IsError(got) {
		t.Errorf("STRING - INTEGER: expected error, got %s", got.Inspect())
	}
	if got := Mul(&Integer{Value: 2}, &String{Value: "a"}); !IsError(got) {
		t.Errorf("INTEGER * STRING: expected error, got %s", got.Inspect())
	}
}

func TestIntegerArithmeticStaysIntegral(t *testing.T) {
	if got := Mul(&Integer{Value: 6}, &Integer{Value: 7}); got.Type() != INTEGER_OBJ || got.Inspect() != "42" {
		t.Errorf("got %s %s", got.Type(), got.Inspect())
	}
	if got := Sub(&Integer{Value: 1}, &Integer{Value: 4}); got.Type() != INTEGER_OBJ || got.Inspect() != "-3" {
		t.Errorf("got %s %s", got.Type(), got.Inspect())
	}
}

func TestDiv(t *testing.T) {
	if got := Div(&Integer{Value: 6}, &Integer{Value: 3}); got.Type() != INTEGER_OBJ || got.Inspect() != "2" {
		t.Errorf("exact integer division: got %s %s", got.Type(), got.Inspect())
	}
	if got := Div(&Integer{Value: 1}, &Integer{Value: 2}); got.Type() != NUMBER_OBJ || got.Inspect() != "0.5" {
		t.Errorf("inexact integer division: got %s %s", got.Type(), got.Inspect())
	}
	if got := Div(&Number{Value: 1}, &Number{Value: 4}); got.Type() != NUMBER_OBJ || got.Inspect() != "0.25" {
		t.Errorf("float division: got %s %s", got.Type(), got.Inspect())
	}
}

func TestDivByZero(t *testing.T) {
	divisors := []Value{
		&Integer{Value: 0},
		&Number{Value: 0},
		&Boolean{Value: false},
		&String{Value: "nope"},
	}
	for _, d := range divisors {
		got := Div(&Integer{Value: 1}, d)
		if !IsError(got) {
			t.Errorf("1 / %s %s: expected error, got %s", d.Type(), d.Inspect(), got.Inspect())
		}
	}
}

func TestErrorPropagates(t *testing.T) {
	e := NewError("boom")
	if got := Add(e, &Integer{Value: 1}); got != e {
		t.Errorf("error operand must propagate unchanged")
	}
	if got := Div(&Integer{Value: 1}, e); got != e {
		t.Errorf("error operand must propagate unchanged")
	}
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		v        Value
		expected float64
	}{
		{&Number{Value: 2.5}, 2.5},
		{&Integer{Value: 3}, 3},
		{&Boolean{Value: true}, 1},
		{&Boolean{Value: false}, 0},
		{&String{Value: "1.5"}, 1.5},
		{&String{Value: "not a number"}, 0},
		{NewError("x"), 0},
	}
	for i, tt := range tests {
		if got := ToNumber(tt.v); got != tt.expected {
			t.Errorf("tests[%d]: got %v, want %v", i, got, tt.expected)
		}
	}
}
