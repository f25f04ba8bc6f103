package scope

import (
	"strings"

	"TutorHub/pkg/filter"
)

// All 范围通配标记
const All = "all"

const (
	FieldID          = "id"
	FieldCities      = "cities"
	FieldDepartments = "departments"
	FieldCityName    = "city_name"
)

// Identity 当前请求的调用者，由 token 解析而来，请求内只读
type Identity struct {
	ID             string
	Username       string
	IsAdmin        bool
	HomeCity       string
	HomeDepartment string
}

func (i Identity) Authenticated() bool {
	return i.ID != ""
}

// CityBound 城市管理员：管理员且绑定了城市
func (i Identity) CityBound() bool {
	return i.IsAdmin && i.HomeCity != ""
}

type Kind string

const (
	KindAgent      Kind = "agent"
	KindWebCard    Kind = "web-card"
	KindFeishuCard Kind = "feishu-card"
	KindUser       Kind = "user"
)

// Scoped 是否携带城市/部门可见范围
func (k Kind) Scoped() bool {
	switch k {
	case KindAgent, KindWebCard, KindFeishuCard:
		return true
	default:
		return false
	}
}

// ResourceScope 资源的可见范围，两组标签分别为城市与部门
type ResourceScope struct {
	Cities      []string
	Departments []string
}

func (s ResourceScope) Lookup(field string) (any, bool) {
	switch field {
	case FieldCities:
		return s.Cities, true
	case FieldDepartments:
		return s.Departments, true
	default:
		return nil, false
	}
}

// Scoped 带可见范围的记录
type Scoped interface {
	Scope() ResourceScope
}

// Visible 城市或部门任一维度命中（含 all）即可见
func Visible(city, department string) filter.Expr {
	return filter.Or{
		filter.HasAny{Field: FieldCities, Values: Tags(city)},
		filter.HasAny{Field: FieldDepartments, Values: Tags(department)},
	}
}

// Tags 返回 ["all", v]，v 为空时只有 "all"
func Tags(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" || v == All {
		return []string{All}
	}
	return []string{All, v}
}

// Normalize 去掉空白项；nil 视为未指定，补为 ["all"]，显式空集合保持为空（不匹配任何人）
func Normalize(tags []string) []string {
	if tags == nil {
		return []string{All}
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
