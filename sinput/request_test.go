package sinput_test

import (
	"testing"

	"github.com/gordian-engine/gsegtree/sinput"
	"github.com/gordian-engine/gsegtree/smulti"
	"github.com/stretchr/testify/require"
)

func TestBuildRequest_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, sinput.BuildRequest{Values: []int64{1}}.Validate(0))
	require.NoError(t, sinput.BuildRequest{Values: []int64{1, 2}}.Validate(2))

	require.ErrorIs(t, sinput.BuildRequest{}.Validate(0), sinput.ErrInvalidRequest)
	require.ErrorIs(t, sinput.BuildRequest{Values: []int64{}}.Validate(0), sinput.ErrInvalidRequest)
	require.ErrorIs(t, sinput.BuildRequest{Values: []int64{1, 2, 3}}.Validate(2), sinput.ErrInvalidRequest)
}

func TestQueryRequest_Validate(t *testing.T) {
	t.Parallel()

	ok := sinput.QueryRequest{Lo: 1, Hi: 4, Kinds: []string{"min", "sum"}}
	require.NoError(t, ok.Validate())

	ks, err := ok.KindSet()
	require.NoError(t, err)
	require.Equal(t, smulti.KindsOf(smulti.KindMin, smulti.KindSum), ks)

	for name, bad := range map[string]sinput.QueryRequest{
		"negative lo":  {Lo: -1, Hi: 3, Kinds: []string{"min"}},
		"empty range":  {Lo: 3, Hi: 3, Kinds: []string{"min"}},
		"no kinds":     {Lo: 0, Hi: 3},
		"unknown kind": {Lo: 0, Hi: 3, Kinds: []string{"avg"}},
	} {
		require.ErrorIs(t, bad.Validate(), sinput.ErrInvalidRequest, name)
	}
}

func TestUpdateRequest_Validate(t *testing.T) {
	t.Parallel()

	req := sinput.UpdateRequest{Position: 2, Value: 0}
	require.NoError(t, req.Validate())
	require.Equal(t, smulti.Assignment{Pos: 2, Value: 0}, req.Assignment())

	require.ErrorIs(t, sinput.UpdateRequest{Position: -1}.Validate(), sinput.ErrInvalidRequest)
}
