package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/wcspec/pkg/jsdoc"
	"github.com/gnana997/wcspec/pkg/types"
)

func prop(name string, t *types.Type) *Member {
	return &Member{Kind: MemberProperty, PropName: name, Type: lazyType(t)}
}

func attr(name string, t *types.Type) *Member {
	return &Member{Kind: MemberAttribute, AttrName: name, Type: lazyType(t)}
}

func TestMergeMembers_AttributePropertyUnification(t *testing.T) {
	a := attr("Value", types.AnyType)
	a.Default, a.HasDefault = "from-attr", true
	a.JSDoc = &jsdoc.Comment{Description: "attr doc"}
	a.Required, a.HasRequired = true, true

	p := prop("value", types.StringType)
	p.Default, p.HasDefault = "from-prop", true

	out := MergeMembers([]*Member{a, p})
	require.Len(t, out, 1)
	m := out[0]
	assert.Equal(t, MemberProperty, m.Kind)
	assert.Equal(t, "value", m.PropName)
	assert.Equal(t, "Value", m.AttrName)
	assert.Equal(t, "from-attr", m.Default)
	assert.True(t, m.Required)
	assert.Equal(t, "attr doc", m.Description())
	assert.Equal(t, types.String, m.ResolvedType().Kind)
}

func TestMergeMembers_LinkedAttribute(t *testing.T) {
	p := prop("colorScheme", types.StringType)
	p.AttrName = "color-scheme"
	a := attr("color-scheme", types.AnyType)
	a.JSDoc = &jsdoc.Comment{Description: "The scheme."}

	out := MergeMembers([]*Member{p, a})
	require.Len(t, out, 1)
	assert.Equal(t, "colorScheme", out[0].PropName)
	assert.Equal(t, "The scheme.", out[0].Description())
}

func TestMergeMembers_AnyAndConcreteInEitherOrder(t *testing.T) {
	for _, order := range [][]*Member{
		{prop("x", types.AnyType), prop("x", types.NumberType)},
		{prop("x", types.NumberType), prop("x", types.AnyType)},
	} {
		out := MergeMembers(order)
		require.Len(t, out, 1)
		assert.Equal(t, types.Number, out[0].ResolvedType().Kind)
	}
}

func TestMergeMembers_PriorityWithinDeclaration(t *testing.T) {
	decl := &ComponentDeclaration{Name: "El"}
	high := prop("open", types.BooleanType)
	high.Priority, high.Declaration = PriorityHigh, decl
	low := prop("open", types.StringType)
	low.Priority, low.Declaration = PriorityLow, decl
	low.JSDoc = &jsdoc.Comment{Description: "docs only on the low fact"}

	out := MergeMembers([]*Member{high, low})
	require.Len(t, out, 1)
	assert.Equal(t, PriorityHigh, out[0].Priority)
	assert.Equal(t, types.Boolean, out[0].ResolvedType().Kind)
	assert.Equal(t, "docs only on the low fact", out[0].Description())

	// Across declarations the later fact wins regardless of priority.
	sub := &ComponentDeclaration{Name: "Sub"}
	override := prop("open", types.StringType)
	override.Priority, override.Declaration = PriorityLow, sub
	out = MergeMembers([]*Member{high, override})
	require.Len(t, out, 1)
	assert.Equal(t, types.String, out[0].ResolvedType().Kind)
}

func TestMergeMembers_Idempotent(t *testing.T) {
	p := prop("size", types.NumberType)
	p.Default, p.HasDefault = 1.0, true
	in := []*Member{
		attr("size", types.AnyType),
		p,
		attr("label", types.StringType),
		prop("label", types.AnyType),
		prop("other", types.BooleanType),
	}

	once := MergeMembers(in)
	twice := MergeMembers(once)
	require.Equal(t, len(once), len(twice))
	for i := range once {
		assert.Equal(t, once[i].Kind, twice[i].Kind)
		assert.Equal(t, once[i].PropName, twice[i].PropName)
		assert.Equal(t, once[i].AttrName, twice[i].AttrName)
		assert.Equal(t, once[i].Default, twice[i].Default)
		assert.Equal(t, once[i].ResolvedType().Kind, twice[i].ResolvedType().Kind)
	}
	assert.Equal(t, []string{"size", "label", "other"}, memberNames(once))
}

func TestMergeMembers_DuplicatedInputIsIdempotent(t *testing.T) {
	build := func() []*Member {
		p := prop("size", types.NumberType)
		p.Default, p.HasDefault = 1.0, true
		return []*Member{
			attr("size", types.AnyType),
			p,
			attr("label", types.StringType),
			prop("label", types.AnyType),
			prop("other", types.BooleanType),
		}
	}

	single := MergeMembers(build())
	doubled := MergeMembers(append(build(), build()...))
	require.Equal(t, memberNames(single), memberNames(doubled))
	for i := range single {
		assert.Equal(t, single[i].Kind, doubled[i].Kind)
		assert.Equal(t, single[i].PropName, doubled[i].PropName)
		assert.Equal(t, single[i].AttrName, doubled[i].AttrName)
		assert.Equal(t, single[i].Default, doubled[i].Default)
		assert.Equal(t, single[i].Required, doubled[i].Required)
		assert.Equal(t, single[i].ResolvedType().Kind, doubled[i].ResolvedType().Kind)
	}
}

func TestMergeMembers_AttributeRequiredWins(t *testing.T) {
	required := prop("label", types.StringType)
	required.Required, required.HasRequired = true, true

	optional := attr("label", types.AnyType)
	optional.Required, optional.HasRequired = false, true

	out := MergeMembers([]*Member{optional, required})
	require.Len(t, out, 1)
	assert.False(t, out[0].Required, "an explicit optional attribute overrides the property")

	unstated := attr("label", types.AnyType)
	out = MergeMembers([]*Member{unstated, required})
	require.Len(t, out, 1)
	assert.True(t, out[0].Required, "an attribute without a flag keeps the property's")
}

func TestMergeMembers_DoesNotMutateInput(t *testing.T) {
	a := attr("v", types.AnyType)
	p := prop("v", types.StringType)
	MergeMembers([]*Member{a, p})
	assert.Empty(t, p.AttrName)
	assert.Equal(t, MemberAttribute, a.Kind)
}

func TestMergeFeatureSets_NamedFacts(t *testing.T) {
	earlier := &FeatureSet{
		Events: []*Event{{Name: "change", FeatureBase: FeatureBase{JSDoc: &jsdoc.Comment{Description: "first"}}, Type: lazyType(types.AnyType)}},
		Slots:  []*Slot{{Name: "", PermittedTagNames: []string{"li"}}},
		CSSProperties: []*CSSProperty{
			{Name: "--color", Default: "red"},
		},
	}
	later := &FeatureSet{
		Events: []*Event{{Name: "change", Type: lazyType(types.Ref("CustomEvent", types.StringType))}},
		Slots:  []*Slot{{Name: "", FeatureBase: FeatureBase{JSDoc: &jsdoc.Comment{Description: "default slot"}}}},
		CSSProperties: []*CSSProperty{
			{Name: "--color", TypeHint: "<color>"},
		},
		CSSParts: []*CSSPart{{Name: "label"}},
	}

	merged := MergeFeatureSets(earlier, later)

	require.Len(t, merged.Events, 1)
	ev := merged.Events[0]
	assert.Equal(t, "first", ev.Description())
	assert.Equal(t, "CustomEvent", ev.Type.Get().Name)

	require.Len(t, merged.Slots, 1)
	assert.Equal(t, []string{"li"}, merged.Slots[0].PermittedTagNames)
	assert.Equal(t, "default slot", merged.Slots[0].Description())

	require.Len(t, merged.CSSProperties, 1)
	assert.Equal(t, "red", merged.CSSProperties[0].Default)
	assert.Equal(t, "<color>", merged.CSSProperties[0].TypeHint)

	require.Len(t, merged.CSSParts, 1)
}
