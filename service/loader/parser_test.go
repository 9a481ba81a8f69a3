package loader

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/gokern/model/program"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name        string
		listing     string
		expect      *program.Image
		expectedErr bool
	}{
		{
			name: "directives and instructions",
			listing: `
# demo program
.name demo
.stack 0x2000
.segment 0x10000 0x1000 rx
.segment 0x12000 0x800 rw

print "hello"
time
yield
sbrk -4096
mmap 0x20000 0x2000 3
munmap 0x20000 0x2000
info
exit 0
`,
			expect: &program.Image{
				Name:      "demo",
				StackSize: 0x2000,
				Segments: []program.Segment{
					{Start: 0x10000, Size: 0x1000, Port: 0x5},
					{Start: 0x12000, Size: 0x800, Port: 0x3},
				},
				Instructions: []program.Instruction{
					{Op: program.OpPrint, Text: "hello"},
					{Op: program.OpTime},
					{Op: program.OpYield},
					{Op: program.OpSbrk, Args: []int64{-4096}},
					{Op: program.OpMmap, Args: []int64{0x20000, 0x2000, 3}},
					{Op: program.OpMunmap, Args: []int64{0x20000, 0x2000}},
					{Op: program.OpInfo},
					{Op: program.OpExit, Args: []int64{0}},
				},
			},
		},
		{
			name: "numeric segment permission",
			listing: `
.segment 0x10000 0x1000 7
exit 0
`,
			expect: &program.Image{
				Segments: []program.Segment{
					{Start: 0x10000, Size: 0x1000, Port: 0x7},
				},
				Instructions: []program.Instruction{
					{Op: program.OpExit, Args: []int64{0}},
				},
			},
		},
		{
			name:        "unknown operation",
			listing:     "reboot 1",
			expectedErr: true,
		},
		{
			name:        "missing operand",
			listing:     "exit",
			expectedErr: true,
		},
		{
			name:        "unknown directive",
			listing:     ".entry 0x1000",
			expectedErr: true,
		},
		{
			name:        "unknown permission letter",
			listing:     ".segment 0x10000 0x1000 rq",
			expectedErr: true,
		},
		{
			name:        "zero segment size",
			listing:     ".segment 0x10000 0 rw\nexit 0",
			expectedErr: true,
		},
		{
			name:        "unterminated string",
			listing:     `print "dangling`,
			expectedErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			image, err := Parse([]byte(tc.listing))
			if tc.expectedErr {
				if err == nil {
					err = image.Validate()
				}
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.EqualValues(t, tc.expect, image)
		})
	}
}

func TestService_Load(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	listing := `
.stack 0x1000
print "from storage"
exit 0
`
	URL := "mem://localhost/loader/demo.prog"
	require.NoError(t, fs.Upload(ctx, URL, file.DefaultFileOsMode, strings.NewReader(listing)))

	service := New(WithBaseURL("mem://localhost/loader"))
	image, err := service.Load(ctx, "demo.prog")
	require.NoError(t, err)
	// the name falls back to the listing file name
	assert.Equal(t, "demo", image.Name)
	assert.Equal(t, URL, image.Source)
	assert.Len(t, image.Instructions, 2)

	_, err = service.Load(ctx, "missing.prog")
	assert.Error(t, err)
}
