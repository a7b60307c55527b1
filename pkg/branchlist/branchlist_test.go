package branchlist_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/branchlist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	res := branchlist.Build("12090301", []int{3, 1, 3, 0})
	assert.Equal(t, []int{1, 3, 0}, branchlist.Branches(res))
	assert.Equal(t, "12090301", res[0].HUC)

	res = branchlist.Remove(res, "12090301", 3)
	assert.Equal(t, []int{1, 0}, branchlist.Branches(res))
}

func TestRoundTrip(t *testing.T) {
	src := "12090301,1\n12090301,3\n12090301,0\n"
	entries, err := branchlist.Read(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	var buf bytes.Buffer
	require.NoError(t, branchlist.Write(&buf, entries))
	assert.Equal(t, src, buf.String())
}

func TestList(t *testing.T) {
	entries := branchlist.Build("12090301", []int{1, 3})
	var buf bytes.Buffer
	require.NoError(t, branchlist.WriteList(&buf, entries))
	assert.Equal(t, "1\n3\n", buf.String(), "branch zero is not listed")

	ids, err := branchlist.ReadList(&buf)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, ids)
}

func TestReadErrors(t *testing.T) {
	_, err := branchlist.Read(strings.NewReader("12090301,x\n"))
	assert.Error(t, err)
	_, err = branchlist.Read(strings.NewReader("12090301\n"))
	assert.Error(t, err)
	_, err = branchlist.ReadList(strings.NewReader("1\nfoo\n"))
	assert.Error(t, err)
}
