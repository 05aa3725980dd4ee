package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/yutrace/pkg/model"
)

func fill(t *testing.T, l *Ledger, texts ...string) {
	t.Helper()
	for _, s := range texts {
		_, err := l.Append(model.Entry{Kind: model.EntryTeam, Text: s})
		require.NoError(t, err)
	}
}

func texts(entries []model.Entry) []string {
	ret := make([]string, 0, len(entries))
	for _, e := range entries {
		ret = append(ret, e.Text)
	}
	return ret
}

func TestRecent(t *testing.T) {
	l := New()
	fill(t, l, "a", "b", "c")

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{"zero", 0, []string{}},
		{"two", 2, []string{"c", "b"}},
		{"all", 3, []string{"c", "b", "a"}},
		{"more than stored", 10, []string{"c", "b", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.Recent(tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, texts(got))
		})
	}

	_, err := l.Recent(-1)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestAppendAssignsSequence(t *testing.T) {
	l := New()
	e, err := l.Append(model.Entry{Text: "first"})
	require.NoError(t, err)
	assert.Equal(t, 1, e.Seq)

	e, err = l.Append(model.Entry{Seq: 5, Text: "explicit"})
	require.NoError(t, err)
	assert.Equal(t, 5, e.Seq)
	assert.Equal(t, 6, l.NextSeq())

	_, err = l.Append(model.Entry{Seq: 5})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
	assert.Equal(t, 2, l.Len())
}

func TestAllIsACopy(t *testing.T) {
	l := New()
	_, err := l.Append(model.Entry{
		Kind: model.EntryTurn,
		Turn: &model.TurnResult{To: 12},
	})
	require.NoError(t, err)

	all := l.All()
	all[0].Turn.To = 99
	all[0].Text = "changed"

	again := l.All()
	assert.Equal(t, 12, again[0].Turn.To)
	assert.Empty(t, again[0].Text)
}

func TestReset(t *testing.T) {
	l := New()
	fill(t, l, "a", "b")
	l.Reset()

	assert.Empty(t, l.All())
	recent, err := l.Recent(5)
	require.NoError(t, err)
	assert.Empty(t, recent)
	assert.Equal(t, 1, l.NextSeq())
}

func TestRestore(t *testing.T) {
	l := New()
	require.NoError(t, l.Restore([]model.Entry{{Seq: 1}, {Seq: 3}}, 4))
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, 4, l.NextSeq())

	err := l.Restore([]model.Entry{{Seq: 2}, {Seq: 2}}, 3)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
	err = l.Restore([]model.Entry{{Seq: 2}}, 2)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
	// failed restores leave content untouched
	assert.Equal(t, 2, l.Len())
}
