package components

import "testing"

func TestTopologySizes(t *testing.T) {
	if NumJoints != 11 {
		t.Errorf("NumJoints = %d, want 11", NumJoints)
	}
	if NumBones != 10 {
		t.Errorf("NumBones = %d, want 10", NumBones)
	}
	if NumSensors != 22 {
		t.Errorf("NumSensors = %d, want 22", NumSensors)
	}
}

func TestNames(t *testing.T) {
	if got := Hip.String(); got != "hip" {
		t.Errorf("Hip.String() = %q, want hip", got)
	}
	if got := RightFoot.String(); got != "right_foot" {
		t.Errorf("RightFoot.String() = %q, want right_foot", got)
	}
	if got := Torso.String(); got != "torso" {
		t.Errorf("Torso.String() = %q, want torso", got)
	}
	if got := JointName(200).String(); got != "unknown" {
		t.Errorf("out of range joint = %q, want unknown", got)
	}
}

func TestHipIsOrigin(t *testing.T) {
	hip := Joints[Hip]
	if hip.OffsetX != 0 || hip.OffsetY != 0 {
		t.Errorf("hip offset = (%v, %v), want origin", hip.OffsetX, hip.OffsetY)
	}
}

func TestBonesConnectDistinctJoints(t *testing.T) {
	distal := make(map[JointName]BoneName)
	for i, b := range Bones {
		name := BoneName(i)
		if b.Proximal == b.Distal {
			t.Errorf("%s connects %s to itself", name, b.Proximal)
		}
		if b.MinRot > b.MaxRot {
			t.Errorf("%s has min rotation %v above max %v", name, b.MinRot, b.MaxRot)
		}
		if other, ok := distal[b.Distal]; ok {
			t.Errorf("%s and %s share distal joint %s", name, other, b.Distal)
		}
		distal[b.Distal] = name
	}
	// Every joint except the hip is driven by exactly one bone
	if _, ok := distal[Hip]; ok {
		t.Error("hip should not be a distal joint")
	}
	if len(distal) != NumJoints-1 {
		t.Errorf("%d distal joints, want %d", len(distal), NumJoints-1)
	}
}
