package autocat

import (
	"context"

	"github.com/Veraticus/depressurize/internal/gamelist"
)

// VRSelection lists the VR support flags a VrSupport rule categorizes by.
type VRSelection struct {
	Headsets []string `xml:"Headsets>Flag"`
	Input    []string `xml:"Input>Flag"`
	PlayArea []string `xml:"PlayArea>Flag"`
}

// VrSupport assigns a category per supported VR headset, input device and play area.
type VrSupport struct {
	Common
	bound `xml:"-"`

	Prefix                 string      `xml:"Prefix,omitempty"`
	IncludedVRSupportFlags VRSelection `xml:"IncludedVRSupportFlags"`
}

// NewVrSupport returns a VrSupport rule with no flags selected.
func NewVrSupport(name string) *VrSupport {
	return &VrSupport{Common: Common{Name: name}}
}

func (v *VrSupport) Type() Type { return TypeVrSupport }

func (v *VrSupport) PreProcess(_ context.Context, b Binding) error {
	v.bind(b)
	return nil
}

func (v *VrSupport) DeProcess() { v.unbind() }

func (v *VrSupport) CategorizeGame(game *gamelist.Game, filter *gamelist.Filter) (Result, error) {
	if res, done, err := v.guard(v.Name, true, game, filter); done {
		return res, err
	}
	meta, ok := v.metadata(game)
	if !ok {
		return NotInDatabase, nil
	}

	v.apply(game, meta.VRSupport.Headsets, v.IncludedVRSupportFlags.Headsets)
	v.apply(game, meta.VRSupport.Input, v.IncludedVRSupportFlags.Input)
	v.apply(game, meta.VRSupport.PlayArea, v.IncludedVRSupportFlags.PlayArea)
	return Success, nil
}

func (v *VrSupport) apply(game *gamelist.Game, supported, included []string) {
	want := stringSet(included)
	for _, flag := range supported {
		if _, ok := want[flag]; ok {
			v.assign(game, withPrefix(v.Prefix, flag))
		}
	}
}

func (v *VrSupport) Clone() AutoCat {
	return &VrSupport{
		Common: v.Common,
		Prefix: v.Prefix,
		IncludedVRSupportFlags: VRSelection{
			Headsets: copyStrings(v.IncludedVRSupportFlags.Headsets),
			Input:    copyStrings(v.IncludedVRSupportFlags.Input),
			PlayArea: copyStrings(v.IncludedVRSupportFlags.PlayArea),
		},
	}
}
