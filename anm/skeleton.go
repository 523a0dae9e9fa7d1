package anm

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/skelanim/utils"
)

const JointParentNone = -1

type Joint struct {
	Name   string
	Parent int
	Pose   Transform
}

// ReferencePose is the skeleton default transform per joint. It is shared
// read-only between concurrent sequence exports.
type ReferencePose struct {
	Joints []Joint
}

func (rp *ReferencePose) NumJoints() int {
	return len(rp.Joints)
}

func (rp *ReferencePose) ValidJoint(joint int) bool {
	return joint >= 0 && joint < len(rp.Joints)
}

// Pose returns the default transform of a joint, identity when out of range.
func (rp *ReferencePose) Pose(joint int) Transform {
	if !rp.ValidJoint(joint) {
		return IdentityTransform()
	}
	return rp.Joints[joint].Pose
}

func (rp *ReferencePose) Poses() []Transform {
	poses := make([]Transform, len(rp.Joints))
	for i := range rp.Joints {
		poses[i] = rp.Joints[i].Pose
	}
	return poses
}

// Validate rejects parent links that point forward or out of range.
// Parents must precede their children so that walking upwards terminates.
func (rp *ReferencePose) Validate() error {
	for i, j := range rp.Joints {
		if j.Parent == JointParentNone {
			continue
		}
		if j.Parent < 0 || j.Parent >= i {
			return errors.Wrapf(ErrInvalidBoneReference, "joint %d %q has parent %d", i, j.Name, j.Parent)
		}
	}
	return nil
}

// UsedJoints returns the joints referenced by tracks plus all of their
// ancestors, ascending. Without optimize every joint is returned.
// Out of range joint references are ignored here, the decoder reports them.
func (rp *ReferencePose) UsedJoints(trackedJoints []int, optimize bool) []int {
	if !optimize {
		all := make([]int, len(rp.Joints))
		for i := range all {
			all[i] = i
		}
		return all
	}

	used := make(map[int]struct{})
	for _, joint := range trackedJoints {
		for j := joint; rp.ValidJoint(j); j = rp.Joints[j].Parent {
			if _, ok := used[j]; ok {
				break
			}
			used[j] = struct{}{}
		}
	}

	result := make([]int, 0, len(used))
	for j := range used {
		result = append(result, j)
	}
	sort.Ints(result)
	return result
}

// JointPaths builds "root/child/joint" style names for the given joints.
func (rp *ReferencePose) JointPaths(joints []int, asciiOnly bool) []string {
	paths := make([]string, len(joints))
	for i, joint := range joints {
		parts := make([]string, 0, 8)
		for j := joint; rp.ValidJoint(j); j = rp.Joints[j].Parent {
			parts = append(parts, utils.SanitizeName(rp.Joints[j].Name, asciiOnly))
		}
		for l, r := 0, len(parts)-1; l < r; l, r = l+1, r-1 {
			parts[l], parts[r] = parts[r], parts[l]
		}
		paths[i] = strings.Join(parts, "/")
	}
	return paths
}
