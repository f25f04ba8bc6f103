// Package filter 定义集合查询谓词：等值、集合成员、标签数组交集、不区分大小写的子串匹配，
// 以及 and/or 组合。同一个谓词既能翻译成 gorm 条件下推到数据库，也能直接对单条记录求值。
package filter

import (
	"reflect"
	"strings"
)

// Expr 查询谓词
type Expr interface {
	expr()
}

// Eq field == Value
type Eq struct {
	Field string
	Value any
}

// In 标量字段 ∈ Values
type In struct {
	Field  string
	Values []any
}

// HasAny 数组字段与 Values 至少有一个公共元素
type HasAny struct {
	Field  string
	Values []string
}

// Contains 不区分大小写的子串匹配
type Contains struct {
	Field  string
	Substr string
}

// Or 任一子谓词成立；空 Or 恒不成立
type Or []Expr

// And 全部子谓词成立；空 And 恒成立
type And []Expr

func (Eq) expr()       {}
func (In) expr()       {}
func (HasAny) expr()   {}
func (Contains) expr() {}
func (Or) expr()       {}
func (And) expr()      {}

// Document 可被谓词求值的记录
type Document interface {
	Lookup(field string) (any, bool)
}

// Fields 以 map 形式提供字段，便于对任意记录求值
type Fields map[string]any

func (f Fields) Lookup(field string) (any, bool) {
	v, ok := f[field]
	return v, ok
}

// All 合并多个谓词，忽略 nil；结果为 nil 表示不过滤
func All(exprs ...Expr) Expr {
	out := make(And, 0, len(exprs))
	for _, e := range exprs {
		if e == nil {
			continue
		}
		out = append(out, e)
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		return out
	}
}

// Match 对单条记录求值；nil 谓词恒成立
func Match(e Expr, doc Document) bool {
	switch v := e.(type) {
	case nil:
		return true
	case Eq:
		got, ok := doc.Lookup(v.Field)
		return ok && equal(got, v.Value)
	case In:
		got, ok := doc.Lookup(v.Field)
		if !ok {
			return false
		}
		for _, want := range v.Values {
			if equal(got, want) {
				return true
			}
		}
		return false
	case HasAny:
		got, ok := doc.Lookup(v.Field)
		if !ok {
			return false
		}
		for _, tag := range toStrings(got) {
			for _, want := range v.Values {
				if tag == want {
					return true
				}
			}
		}
		return false
	case Contains:
		got, ok := doc.Lookup(v.Field)
		if !ok {
			return false
		}
		s, ok := got.(string)
		if !ok {
			return false
		}
		return strings.Contains(strings.ToLower(s), strings.ToLower(v.Substr))
	case Or:
		for _, sub := range v {
			if Match(sub, doc) {
				return true
			}
		}
		return false
	case And:
		for _, sub := range v {
			if !Match(sub, doc) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func equal(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

func toStrings(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// Keyword 任一字段包含关键词；关键词为空返回 nil
func Keyword(keyword string, fields ...string) Expr {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" || len(fields) == 0 {
		return nil
	}
	or := make(Or, 0, len(fields))
	for _, f := range fields {
		or = append(or, Contains{Field: f, Substr: keyword})
	}
	return or
}
