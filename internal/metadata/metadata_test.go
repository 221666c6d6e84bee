package metadata

import "testing"

func TestScalar(t *testing.T) {
	scalars := []Kind{KindBigint, KindBoolean, KindNumber, KindString}
	for _, k := range scalars {
		if !Scalar(k) {
			t.Errorf("Scalar(%s) = false", k)
		}
	}
	nonScalars := []Kind{
		KindAny, KindArray, KindDate, KindEnum, KindLiteral, KindNever,
		KindNull, KindObject, KindRecord, KindTuple, KindUnion, KindUnknown,
	}
	for _, k := range nonScalars {
		if Scalar(k) {
			t.Errorf("Scalar(%s) = true", k)
		}
	}
}

func TestSkippable(t *testing.T) {
	for _, k := range []Kind{KindAny, KindUnknown, KindNever} {
		if !Skippable(k) {
			t.Errorf("Skippable(%s) = false", k)
		}
	}
	for _, k := range []Kind{KindString, KindNull, KindObject, KindUnion} {
		if Skippable(k) {
			t.Errorf("Skippable(%s) = true", k)
		}
	}
}
