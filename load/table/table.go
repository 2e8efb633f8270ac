// Package table 解析列式观测数据文本。
//
// 每行一条记录，数值以空白或逗号分隔；支持 #、// 行注释和 /* */ 块注释，
// 可选的 .columns 命令为各列命名：
//
//	.columns x y weights
//	0.0  1.00  1   # 第一个观测
//	0.5, 1.42, 1
package table

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// 常量定义 - 用于词法分析的关键字和符号
const (
	tokenColumns           = ".columns" // 列命名命令
	tokenNewline           = "\n"       // 换行符
	tokenSpace             = " "        // 空格
	tokenTab               = "\t"       // 制表符
	tokenReturn            = "\r"       // 回车符
	tokenComma             = ","        // 逗号分隔符
	tokenCommentHash       = "#"        // # 注释
	tokenCommentLine       = "//"       // // 行注释
	tokenCommentBlockStart = "/*"       // /* 块注释开始
	tokenCommentBlockEnd   = "*/"       // */ 块注释结束
)

// Comment 注释
type Comment struct {
	Text string // 注释文本
	Line int    // 行号
}

// Table 解析结果
type Table struct {
	Columns  []string    // 列名称，未命名时为空
	Rows     [][]float64 // 数据行
	Comments []Comment   // 注释列表
}

// Width 列数
func (t *Table) Width() int {
	if len(t.Rows) > 0 {
		return len(t.Rows[0])
	}
	return len(t.Columns)
}

// Column 第 i 列数据
func (t *Table) Column(i int) ([]float64, error) {
	if i < 0 || i >= t.Width() {
		return nil, fmt.Errorf("table: column %d out of range [0, %d)", i, t.Width())
	}
	col := make([]float64, len(t.Rows))
	for r, row := range t.Rows {
		col[r] = row[i]
	}
	return col, nil
}

// Named 按名称获取列，不存在时 ok 为 false
func (t *Table) Named(name string) (col []float64, ok bool) {
	i := slices.Index(t.Columns, strings.ToLower(name))
	if i < 0 {
		return nil, false
	}
	col, err := t.Column(i)
	return col, err == nil
}

// ParseString 解析字符串
func ParseString(s string) (*Table, error) { return Parse(strings.NewReader(s)) }

// Parse 解析列式数据（流式处理）
func Parse(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(SplitTokens)
	t := &Table{}
	lineNum := 1
	var row []float64
	// endRow 结束当前行
	endRow := func() error {
		if len(row) == 0 {
			return nil
		}
		if w := t.Width(); w > 0 && len(row) != w {
			return errorAtLine(lineNum, "列数不一致，需要 %d，得到 %d", w, len(row))
		}
		t.Rows = append(t.Rows, row)
		row = nil
		return nil
	}
	for scanner.Scan() {
		token := scanner.Text()
		switch token {
		case tokenNewline:
			if err := endRow(); err != nil {
				return nil, err
			}
			lineNum++
			continue
		case tokenSpace, tokenTab, tokenReturn, tokenComma:
			continue
		case tokenColumns:
			if len(t.Rows) > 0 || len(row) > 0 || len(t.Columns) > 0 {
				return nil, errorAtLine(lineNum, ".columns 必须位于数据之前且只能出现一次")
			}
			names, comments, err := parseColumns(scanner, lineNum)
			if err != nil {
				return nil, errorAtLine(lineNum, "%v", err)
			}
			t.Columns = names
			t.Comments = append(t.Comments, comments...)
			for _, c := range comments {
				lineNum += strings.Count(c.Text, tokenNewline)
			}
			lineNum++
			continue
		}
		// 处理注释
		if text, ok := parseComment(token); ok {
			t.Comments = append(t.Comments, Comment{Text: text, Line: lineNum})
			lineNum += strings.Count(token, tokenNewline)
			continue
		}
		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return nil, errorAtLine(lineNum, "无效的数值 '%s'", token)
		}
		row = append(row, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取数据时出错: %w", err)
	}
	if err := endRow(); err != nil {
		return nil, err
	}
	return t, nil
}

// parseColumns 读取 .columns 命令到行尾的列名，同一行的注释一并返回
func parseColumns(scanner *bufio.Scanner, lineNum int) ([]string, []Comment, error) {
	var names []string
	var comments []Comment
	for scanner.Scan() {
		token := scanner.Text()
		if token == tokenNewline {
			break
		}
		switch token {
		case tokenSpace, tokenTab, tokenReturn, tokenComma:
			continue
		}
		if text, ok := parseComment(token); ok {
			comments = append(comments, Comment{Text: text, Line: lineNum})
			continue
		}
		names = append(names, strings.ToLower(token))
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	if len(names) == 0 {
		return nil, nil, fmt.Errorf(".columns 命令缺少列名")
	}
	return names, comments, nil
}

// parseComment 解析注释 token
func parseComment(token string) (string, bool) {
	switch {
	case strings.HasPrefix(token, tokenCommentHash):
		return strings.TrimSpace(token[1:]), true
	case strings.HasPrefix(token, tokenCommentLine):
		return strings.TrimSpace(token[2:]), true
	case strings.HasPrefix(token, tokenCommentBlockStart):
		comment := strings.TrimSuffix(token[2:], tokenCommentBlockEnd)
		return strings.TrimSpace(comment), true
	}
	return "", false
}

// errorAtLine 生成带行号的错误信息
func errorAtLine(lineNum int, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("第 %d 行: %s", lineNum, msg)
}

// SplitTokens 分割标识符
// 行注释不包含换行符，换行符作为独立 token 返回。
func SplitTokens(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i := range data {
		switch data[i] {
		case '#':
			if i != 0 {
				return i, data[:i], nil
			}
			return scanComment(data, atEOF)
		case '/':
			if len(data) <= i+1 {
				if !atEOF {
					return 0, nil, nil
				}
				break
			}
			switch data[i+1] {
			case '*':
				if i != 0 {
					return i, data[:i], nil
				}
				if end := bytes.Index(data, []byte(tokenCommentBlockEnd)); end >= 0 {
					end += 2
					return end, data[:end], nil
				}
				if atEOF {
					return len(data), data, nil
				}
				return 0, nil, nil
			case '/':
				if i != 0 {
					return i, data[:i], nil
				}
				return scanComment(data, atEOF)
			}
		case ' ', '\t', '\r', '\n', ',':
			if i != 0 {
				return i, data[:i], nil
			}
			return 1, data[:1], nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// scanComment 读取到行尾（不含换行符）
func scanComment(data []byte, atEOF bool) (int, []byte, error) {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
