package components

import "math"

// JointName identifies one of the fixed anatomical landmarks of a ragdoll.
// The declaration order is the sensor enumeration order.
type JointName uint8

const (
	Shoulders JointName = iota
	Head
	LeftElbow
	LeftHand
	RightElbow
	RightHand
	Hip
	LeftKnee
	RightKnee
	LeftFoot
	RightFoot

	NumJoints = iota
)

// BoneName identifies one of the fixed links of a ragdoll.
// The declaration order is the actuator enumeration order.
type BoneName uint8

const (
	Neck BoneName = iota
	LeftArm
	LeftForearm
	RightArm
	RightForearm
	LeftThigh
	LeftLeg
	RightThigh
	RightLeg
	Torso

	NumBones = iota
)

// Sensor and actuator vector sizes.
const (
	NumSensors   = NumJoints * 2
	NumActuators = NumBones
)

var jointNames = [NumJoints]string{
	"shoulders", "head", "left_elbow", "left_hand", "right_elbow", "right_hand",
	"hip", "left_knee", "right_knee", "left_foot", "right_foot",
}

var boneNames = [NumBones]string{
	"neck", "left_arm", "left_forearm", "right_arm", "right_forearm",
	"left_thigh", "left_leg", "right_thigh", "right_leg", "torso",
}

func (n JointName) String() string {
	if int(n) < NumJoints {
		return jointNames[n]
	}
	return "unknown"
}

func (n BoneName) String() string {
	if int(n) < NumBones {
		return boneNames[n]
	}
	return "unknown"
}

// JointSpec is the rest offset (relative to hip) and mass of a joint.
type JointSpec struct {
	OffsetX, OffsetY float64
	Mass             float64
}

// BoneSpec describes which joints a bone connects and how far it may rotate.
type BoneSpec struct {
	Proximal, Distal JointName
	MinRot, MaxRot   float64
}

// Joints is the rest pose of the skeleton. Offsets are relative to the hip,
// which is also the spawn point.
var Joints = [NumJoints]JointSpec{
	Shoulders:  {0, 80, 15},
	Head:       {0, 115, 10},
	LeftElbow:  {-40, 80, 8},
	LeftHand:   {-85, 80, 5},
	RightElbow: {40, 80, 8},
	RightHand:  {85, 80, 5},
	Hip:        {0, 0, 35},
	LeftKnee:   {-25, -70, 18},
	RightKnee:  {25, -70, 18},
	LeftFoot:   {-40, -120, 10},
	RightFoot:  {40, -120, 10},
}

// Bones is the skeleton topology.
var Bones = [NumBones]BoneSpec{
	Neck:         {Shoulders, Head, -math.Pi / 4, math.Pi / 4},
	LeftArm:      {Shoulders, LeftElbow, -math.Pi / 2, math.Pi / 2},
	LeftForearm:  {LeftElbow, LeftHand, 0, math.Pi},
	RightArm:     {Shoulders, RightElbow, -math.Pi / 2, math.Pi / 2},
	RightForearm: {RightElbow, RightHand, 0, math.Pi},
	LeftThigh:    {Hip, LeftKnee, -math.Pi / 4, math.Pi},
	LeftLeg:      {LeftKnee, LeftFoot, -math.Pi / 2, 0},
	RightThigh:   {Hip, RightKnee, -math.Pi / 4, math.Pi / 2},
	RightLeg:     {RightKnee, RightFoot, -math.Pi / 2, 0},
	Torso:        {Hip, Shoulders, -math.Pi / 2, math.Pi / 2},
}
