package form

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-amenities/backend/internal/models"
)

func upload(name string) Upload {
	return Upload{
		Source: models.SourceFile{Name: name, ContentType: "image/jpeg", PreviewKey: name},
		URL:    "/api/v1/previews/" + name,
	}
}

func countPrimary(images ImageCollection) int {
	n := 0
	for _, img := range images {
		if img.IsPrimary {
			n++
		}
	}
	return n
}

func TestAmenityList_Toggle(t *testing.T) {
	list := AmenityList(models.AmenityCatalog())

	toggled := list.Toggle(3)
	assert.True(t, toggled[2].Selected)
	assert.False(t, list[2].Selected, "original list must not change")

	assert.False(t, toggled.Toggle(3)[2].Selected)
	assert.Equal(t, list, list.Toggle(999))
}

func TestAmenityList_ToggleAll(t *testing.T) {
	list := AmenityList(models.AmenityCatalog()).Toggle(1)

	all := list.ToggleAll()
	assert.True(t, all.AllSelected())

	none := all.ToggleAll()
	assert.False(t, none.AnySelected())

	// Odd number of calls from all selected ends unselected, even ends selected.
	state := all
	for i := 0; i < 4; i++ {
		state = state.ToggleAll()
	}
	assert.True(t, state.AllSelected())
	assert.False(t, state.ToggleAll().AnySelected())
}

func TestImageCollection_AddMarksFirstPrimaryOnlyWhenEmpty(t *testing.T) {
	images := ImageCollection{}.Add([]Upload{upload("a"), upload("b")})
	require.Len(t, images, 2)
	assert.True(t, images[0].IsPrimary)
	assert.False(t, images[1].IsPrimary)
	assert.NotEqual(t, images[0].ID, images[1].ID)
	assert.Equal(t, "a", images[0].Source.Name)

	more := images.Add([]Upload{upload("c")})
	require.Len(t, more, 3)
	assert.False(t, more[2].IsPrimary)
	assert.Equal(t, 1, countPrimary(more))
}

func TestImageCollection_SetPrimaryKeepsSinglePrimary(t *testing.T) {
	images := ImageCollection{}.Add([]Upload{upload("a"), upload("b"), upload("c")})

	for _, target := range []string{images[2].ID, images[1].ID, images[1].ID, images[0].ID} {
		var err error
		images, err = images.SetPrimary(target)
		require.NoError(t, err)
		assert.Equal(t, 1, countPrimary(images))
		assert.True(t, images[images.index(target)].IsPrimary)
	}

	_, err := images.SetPrimary("missing")
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestImageCollection_SetDescription(t *testing.T) {
	images := ImageCollection{}.Add([]Upload{upload("a")})

	updated, err := images.SetDescription(images[0].ID, "Front elevation")
	require.NoError(t, err)
	assert.Equal(t, "Front elevation", updated[0].Description)
	assert.Empty(t, images[0].Description)

	_, err = images.SetDescription("missing", "x")
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestImageCollection_RemoveDoesNotPromote(t *testing.T) {
	images := ImageCollection{}.Add([]Upload{upload("a"), upload("b")})
	primaryID := images[0].ID

	remaining, removed, err := images.Remove(primaryID)
	require.NoError(t, err)
	assert.Equal(t, primaryID, removed.ID)
	require.Len(t, remaining, 1)
	assert.False(t, remaining.HasPrimary())

	_, _, err = remaining.Remove(primaryID)
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestURLList_SetValidates(t *testing.T) {
	list := NewURLList(nil)
	require.True(t, list.AddField())
	require.True(t, list.AddField())

	require.NoError(t, list.Set(0, "https://www.youtube.com/watch?v=abc"))
	assert.Empty(t, list.Errors[0])

	require.NoError(t, list.Set(1, "https://example.com/me"))
	assert.Equal(t, "https://example.com/me", list.Values[1], "invalid value is still written")
	assert.Equal(t, invalidURLMessage, list.Errors[1])

	require.NoError(t, list.Set(1, "linkedin.com/in/someone"))
	assert.Empty(t, list.Errors[1])

	assert.ErrorIs(t, list.Set(5, "x"), ErrIndexOutOfRange)
	assert.ErrorIs(t, list.Set(-1, "x"), ErrIndexOutOfRange)
}

func TestURLList_AddFieldIsBounded(t *testing.T) {
	list := NewURLList(nil)
	for i := 0; i < MaxInputs; i++ {
		assert.True(t, list.AddField())
	}
	assert.False(t, list.AddField())
	assert.Len(t, list.Values, MaxInputs)
	assert.Len(t, list.Errors, MaxInputs)
}

func TestURLList_Slots(t *testing.T) {
	list := NewURLList([]string{"", ""})
	slots := list.Slots()
	require.Len(t, slots, 2)
	assert.Equal(t, "YouTube URL", slots[0].Title)
	assert.Equal(t, "LinkedIn URL", slots[1].Title)
}

func TestRera_SelectRegisteredSeedsSlot(t *testing.T) {
	r := NewRera(models.ReraState{})
	r.Select(true)
	assert.Equal(t, []string{""}, r.State.Numbers)
	assert.True(t, r.State.Registered())

	require.NoError(t, r.Set(0, "P52100001234"))
	r.Select(true)
	assert.Equal(t, []string{"P52100001234"}, r.State.Numbers)
}

func TestRera_SelectNotRegisteredClears(t *testing.T) {
	r := NewRera(models.ReraState{})
	r.Select(true)
	require.True(t, r.AddField())
	require.NoError(t, r.Set(1, "bad number!"))
	require.NotEmpty(t, r.Errors[1])

	r.Select(false)
	assert.Empty(t, r.State.Numbers)
	assert.Empty(t, r.Errors)
	assert.NotNil(t, r.State.Numbers)
	assert.True(t, r.State.Decided())
	assert.False(t, r.State.Registered())
}

func TestRera_SetAndAddField(t *testing.T) {
	r := NewRera(models.ReraState{})
	r.Select(true)

	require.NoError(t, r.Set(0, "ABC-1"))
	assert.Equal(t, invalidReraMessage, r.Errors[0])
	require.NoError(t, r.Set(0, "ABC1"))
	assert.Empty(t, r.Errors[0])

	assert.True(t, r.AddField())
	assert.True(t, r.AddField())
	assert.False(t, r.AddField())
	assert.Len(t, r.State.Numbers, MaxInputs)

	assert.ErrorIs(t, r.Set(3, "X"), ErrIndexOutOfRange)
}

func TestLandmarkPicker_SetField(t *testing.T) {
	p := LandmarkPicker{Landmark: models.DefaultLandmark()}

	require.NoError(t, p.SetField(FieldLandmarkID, "3"))
	assert.Equal(t, 3, p.Landmark.LandmarkID)

	require.NoError(t, p.SetField(FieldDistance, "2.5"))
	require.NoError(t, p.SetField(FieldDescription, "Walking distance"))
	assert.True(t, p.Complete())

	assert.ErrorIs(t, p.SetField(FieldLandmarkID, "three"), ErrInvalidValue)
	assert.ErrorIs(t, p.SetField("latitude", "1"), ErrUnknownField)
	assert.Equal(t, models.DefaultLatitude, p.Landmark.Latitude)
}

func TestLandmarkPicker_PickLocationOnlyTouchesCoordinates(t *testing.T) {
	p := LandmarkPicker{Landmark: models.DefaultLandmark()}
	require.NoError(t, p.SetField(FieldDistance, "4"))

	p.ToggleMap()
	assert.True(t, p.MapOpen)
	p.PickLocation(19.07, 72.87)
	p.ToggleMap()

	assert.False(t, p.MapOpen)
	assert.Equal(t, 19.07, p.Landmark.Latitude)
	assert.Equal(t, 72.87, p.Landmark.Longitude)
	assert.Equal(t, "4", p.Landmark.Distance)
	assert.Equal(t, models.DefaultLandmarkID, p.Landmark.LandmarkID)
}

func TestDraft_Progress(t *testing.T) {
	d := NewDraft("s1")
	assert.Equal(t, 0, d.Progress())

	d.Amenities = d.Amenities.Toggle(1)
	d.AddImages([]Upload{upload("a")})
	assert.Equal(t, 40, d.Progress())

	d.URLs.AddField()
	assert.Equal(t, 60, d.Progress())
	require.NoError(t, d.URLs.Set(0, "https://github.com/me"))
	assert.Equal(t, 60, d.Progress())

	d.Rera.Select(false)
	assert.Equal(t, 80, d.Progress())

	require.NoError(t, d.Landmark.SetField(FieldDistance, "1"))
	assert.Equal(t, 80, d.Progress())
	require.NoError(t, d.Landmark.SetField(FieldDescription, "Near the gate"))
	assert.Equal(t, 100, d.Progress())
}

func TestDraft_ProgressCountsEmptyURLSlot(t *testing.T) {
	d := NewDraft("s1")
	require.True(t, d.URLs.AddField())
	assert.Equal(t, 20, d.Progress())
}

func TestDraft_DocumentDropsNumbersWhenNotRegistered(t *testing.T) {
	d := NewDraft("s1")
	d.Rera.Select(true)
	require.NoError(t, d.Rera.Set(0, "ABC1"))
	assert.Equal(t, []string{"ABC1"}, d.Document().Rera.Numbers)

	// Force a stale numbers slice behind a false decision.
	d.Rera.State.IsRegistered = models.BoolPtr(false)
	assert.Equal(t, []string{}, d.Document().Rera.Numbers)
}

func TestDraft_RemoveImageReturnsHandle(t *testing.T) {
	d := NewDraft("s1")
	d.AddImages([]Upload{upload("a"), upload("b")})
	require.Len(t, d.SourceFiles(), 2)

	src, err := d.RemoveImage(d.Images[0].ID)
	require.NoError(t, err)
	require.NotNil(t, src)
	assert.Equal(t, "a", src.PreviewKey)
	assert.Len(t, d.SourceFiles(), 1)

	_, err = d.RemoveImage("missing")
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestDraft_RestoreLeavesHandlesEmpty(t *testing.T) {
	d := NewDraft("s1")
	doc := models.FormDocument{
		Amenities: []models.Amenity{{ID: 1, Label: "x", Selected: true}},
		Images:    []models.Image{{ID: "i1", Source: &models.SourceFile{Name: "a"}, URL: "u", Description: "d", IsPrimary: true}},
		URLs:      []string{"https://github.com/me"},
		Rera:      models.ReraState{IsRegistered: models.BoolPtr(true), Numbers: []string{"A1"}},
	}

	d.Restore(&doc)

	assert.Nil(t, d.Images[0].Source)
	assert.Empty(t, d.SourceFiles())
	assert.Equal(t, models.DefaultLandmark(), d.Landmark.Landmark)
	assert.Equal(t, []string{"A1"}, d.Rera.State.Numbers)
	assert.Len(t, d.Rera.Errors, 1)
	assert.Len(t, d.URLs.Errors, 1)
}

func TestDraft_JSONRoundTripKeepsHandles(t *testing.T) {
	d := NewDraft("s1")
	d.AddImages([]Upload{upload("a")})
	d.Landmark.ToggleMap()

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var restored Draft
	require.NoError(t, json.Unmarshal(data, &restored))

	require.Len(t, restored.Images, 1)
	require.NotNil(t, restored.Images[0].Source)
	assert.Equal(t, "a", restored.Images[0].Source.PreviewKey)
	assert.True(t, restored.Landmark.MapOpen)
	assert.Equal(t, d.Progress(), restored.Progress())
}
