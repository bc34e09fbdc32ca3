package doc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDocumentPages(t *testing.T) {
	d := NewMemoryDocument(
		MemoryPage{Width: 612, Height: 792},
		MemoryPage{Width: 595, Height: 842},
	)

	assert.Equal(t, 2, d.PageCount())

	w, h, err := d.PageSize(1)
	require.NoError(t, err)
	assert.Equal(t, 595.0, w)
	assert.Equal(t, 842.0, h)

	_, _, err = d.PageSize(2)
	assert.ErrorIs(t, err, ErrInvalidPage)
	_, _, err = d.PageSize(-1)
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestMemoryDocumentSearchText(t *testing.T) {
	d := NewMemoryDocument(MemoryPage{Width: 612, Height: 792})
	d.AddText(0, "The Recipient shall keep", NewRect(50, 100, 290, 112))

	t.Run("case insensitive substring", func(t *testing.T) {
		hits, err := d.SearchText(0, "recipient", nil)
		require.NoError(t, err)
		require.Len(t, hits, 1)

		// 24 chars over 240 points: "Recipient" covers chars 4..13.
		assert.InDelta(t, 90, hits[0].X0, 0.001)
		assert.InDelta(t, 180, hits[0].X1, 0.001)
	})

	t.Run("clip filters non intersecting hits", func(t *testing.T) {
		clip := NewRect(0, 0, 40, 40)
		hits, err := d.SearchText(0, "recipient", &clip)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("empty term", func(t *testing.T) {
		hits, err := d.SearchText(0, "", nil)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("invalid page", func(t *testing.T) {
		_, err := d.SearchText(5, "recipient", nil)
		assert.ErrorIs(t, err, ErrInvalidPage)
	})
}

func TestMemoryDocumentWidgets(t *testing.T) {
	d := NewMemoryDocument(MemoryPage{Width: 612, Height: 792})
	d.AddWidget(Widget{Name: "company", Type: WidgetText, Rect: NewRect(100, 100, 300, 120)})

	require.NoError(t, d.SetWidgetValue("company", "Acme Corp"))

	widgets, err := d.Widgets()
	require.NoError(t, err)
	require.Len(t, widgets, 1)
	assert.Equal(t, "Acme Corp", widgets[0].Value)

	assert.ErrorIs(t, d.SetWidgetValue("missing", "x"), ErrNoSuchWidget)

	d.SetValueErr = errors.New("backend down")
	assert.Error(t, d.SetWidgetValue("company", "y"))
}

func TestMemoryDocumentInsertsRecorded(t *testing.T) {
	d := NewMemoryDocument(MemoryPage{Width: 612, Height: 792})

	require.NoError(t, d.InsertText(0, Point{X: 10, Y: 20}, "hello", 10))
	require.NoError(t, d.InsertImage(0, NewRect(0, 0, 100, 50), "sig.png"))
	require.NoError(t, d.InsertPDF(0, NewRect(0, 0, 100, 50), "sig.pdf"))

	assert.Len(t, d.Inserts(), 3)
	assert.Len(t, d.InsertsOfKind(InsertKindText), 1)
	assert.Len(t, d.InsertsOfKind(InsertKindImage), 1)
	assert.Len(t, d.InsertsOfKind(InsertKindPDF), 1)

	text := d.InsertsOfKind(InsertKindText)[0]
	assert.Equal(t, "hello", text.Text)
	assert.Equal(t, Point{X: 10, Y: 20}, text.At)
	assert.Equal(t, 10.0, text.FontSize)

	d.InsertErr = errors.New("page gone")
	assert.Error(t, d.InsertText(0, Point{}, "x", 10))
	assert.Len(t, d.Inserts(), 3, "failed inserts are not recorded")
}

func TestMemoryDocumentFlattenDropsWidgets(t *testing.T) {
	d := NewMemoryDocument(MemoryPage{Width: 612, Height: 792})
	d.AddWidget(Widget{Name: "company", Type: WidgetText})

	require.NoError(t, d.Flatten(2.0))

	flattened, scale := d.Flattened()
	assert.True(t, flattened)
	assert.Equal(t, 2.0, scale)

	widgets, err := d.Widgets()
	require.NoError(t, err)
	assert.Empty(t, widgets)
}

func TestMemoryDocumentSaveAndClose(t *testing.T) {
	d := NewMemoryDocument(MemoryPage{Width: 612, Height: 792})

	require.NoError(t, d.Save("out.pdf"))
	assert.Equal(t, "out.pdf", d.SavedPath())

	require.NoError(t, d.Close())
	assert.True(t, d.Closed())
}
