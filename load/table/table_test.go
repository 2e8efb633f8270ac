package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	src := `# 指数衰减观测
.columns x y weights
0.0  1.00  1   # 第一个观测
0.5, 1.42, 2
/* 多行
   注释 */
1e0 -2.5 0.5
// 结束
`
	tb, err := ParseString(src)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "weights"}, tb.Columns)
	assert.Equal(t, [][]float64{{0, 1, 1}, {0.5, 1.42, 2}, {1, -2.5, 0.5}}, tb.Rows)
	require.Len(t, tb.Comments, 4)
	assert.Equal(t, Comment{Text: "指数衰减观测", Line: 1}, tb.Comments[0])
	assert.Equal(t, 3, tb.Comments[1].Line)
	assert.Equal(t, "结束", tb.Comments[3].Text)
	assert.Equal(t, 8, tb.Comments[3].Line)

	y, ok := tb.Named("Y")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 1.42, -2.5}, y)
	_, ok = tb.Named("z")
	assert.False(t, ok)
	_, err = tb.Column(3)
	assert.Error(t, err)
}

func TestParseHeaderComment(t *testing.T) {
	cases := map[string]string{
		"hash":  ".columns x y  # positions and data\n0 1\n1 3\n",
		"line":  ".columns x, y // positions\n0 1\n1 3\n",
		"block": ".columns x /* 位置 */ y\n0 1\n1 3\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			tb, err := ParseString(src)
			require.NoError(t, err)
			assert.Equal(t, []string{"x", "y"}, tb.Columns)
			assert.Equal(t, [][]float64{{0, 1}, {1, 3}}, tb.Rows)
			require.Len(t, tb.Comments, 1)
			assert.Equal(t, 1, tb.Comments[0].Line)
		})
	}
}

func TestParseWithoutHeader(t *testing.T) {
	tb, err := ParseString("1 2\r\n3 4")
	require.NoError(t, err)
	assert.Empty(t, tb.Columns)
	assert.Equal(t, 2, tb.Width())
	col, err := tb.Column(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4}, col)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"ragged":       "1 2\n3\n",
		"header width": ".columns x y\n1 2 3\n",
		"late header":  "1 2\n.columns x y\n",
		"empty header": ".columns\n1 2\n",
		"not a number": "1 abc\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseString(src)
			assert.Error(t, err)
		})
	}
	_, err := ParseString("1 2\n3\n")
	assert.ErrorContains(t, err, "第 2 行")
}
