package service

import (
	"slices"
	"testing"

	"TutorHub/internal/modules/access/domain/scope"
	"TutorHub/pkg/filter"
	"TutorHub/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record scope.ResourceScope

func (r record) Scope() scope.ResourceScope { return scope.ResourceScope(r) }

var lecturer = scope.Identity{ID: "u1", HomeCity: "Shanghai", HomeDepartment: "Teaching"}

func TestAuthorizeManage(t *testing.T) {
	svc := NewAccessService()

	assert.NoError(t, svc.AuthorizeManage(scope.Identity{ID: "a", IsAdmin: true}))
	assert.ErrorIs(t, svc.AuthorizeManage(lecturer), xerr.ErrNotAdmin)
	assert.ErrorIs(t, svc.AuthorizeManage(scope.Identity{}), xerr.ErrUnauthenticated)
}

func TestAuthorizeRecordScenario(t *testing.T) {
	svc := NewAccessService()

	agent := record{Cities: []string{"Beijing"}, Departments: []string{"all"}}
	assert.NoError(t, svc.AuthorizeRecord(lecturer, agent))

	agent.Departments = []string{"Sales"}
	assert.ErrorIs(t, svc.AuthorizeRecord(lecturer, agent), xerr.ErrForbidden)
}

func TestAuthorizeRecordDisjunction(t *testing.T) {
	svc := NewAccessService()
	cityOptions := [][]string{nil, {}, {"all"}, {"Shanghai"}, {"Beijing"}, {"Beijing", "Shanghai"}}
	deptOptions := [][]string{nil, {}, {"all"}, {"Teaching"}, {"Sales"}, {"Sales", "Teaching"}}
	admin := scope.Identity{ID: "a1", IsAdmin: true, HomeCity: "Shenzhen"}

	for _, cities := range cityOptions {
		for _, departments := range deptOptions {
			rec := record{Cities: cities, Departments: departments}
			want := slices.Contains(cities, "all") || slices.Contains(cities, lecturer.HomeCity) ||
				slices.Contains(departments, "all") || slices.Contains(departments, lecturer.HomeDepartment)

			err := svc.AuthorizeRecord(lecturer, rec)
			if want {
				assert.NoError(t, err, "cities=%v departments=%v", cities, departments)
			} else {
				assert.ErrorIs(t, err, xerr.ErrForbidden, "cities=%v departments=%v", cities, departments)
			}
			assert.NoError(t, svc.AuthorizeRecord(admin, rec))
		}
	}
}

func TestAuthorizeRecordUnauthenticated(t *testing.T) {
	err := NewAccessService().AuthorizeRecord(scope.Identity{}, record{Cities: []string{"all"}})
	assert.ErrorIs(t, err, xerr.ErrUnauthenticated)
	assert.NotErrorIs(t, err, xerr.ErrForbidden)
}

func TestBuildListPredicateAdminBypass(t *testing.T) {
	svc := NewAccessService()
	admin := scope.Identity{ID: "a1", IsAdmin: true}
	cityAdmin := scope.Identity{ID: "a2", IsAdmin: true, HomeCity: "Shanghai"}

	for _, kind := range []scope.Kind{scope.KindAgent, scope.KindWebCard, scope.KindFeishuCard} {
		assert.Nil(t, svc.BuildListPredicate(admin, kind))
		assert.Nil(t, svc.BuildListPredicate(cityAdmin, kind))
	}
	assert.Nil(t, svc.BuildListPredicate(admin, scope.KindUser))
	assert.Equal(t, filter.Eq{Field: "city_name", Value: "Shanghai"}, svc.BuildListPredicate(cityAdmin, scope.KindUser))
}

func TestBuildListPredicateNonAdmin(t *testing.T) {
	svc := NewAccessService()

	pred := svc.BuildListPredicate(lecturer, scope.KindAgent)
	require.NotNil(t, pred)
	assert.Equal(t, filter.Or{
		filter.HasAny{Field: "cities", Values: []string{"all", "Shanghai"}},
		filter.HasAny{Field: "departments", Values: []string{"all", "Teaching"}},
	}, pred)

	visible := scope.ResourceScope{Cities: []string{"Beijing"}, Departments: []string{"Teaching"}}
	hidden := scope.ResourceScope{Cities: []string{"Beijing"}, Departments: []string{"Sales"}}
	assert.True(t, filter.Match(pred, visible))
	assert.False(t, filter.Match(pred, hidden))

	assert.Equal(t, filter.Eq{Field: "id", Value: "u1"}, svc.BuildListPredicate(lecturer, scope.KindUser))
	assert.Nil(t, svc.BuildListPredicate(lecturer, scope.Kind("city")))
}

func TestBuildListPredicateWithoutHomeTags(t *testing.T) {
	pred := NewAccessService().BuildListPredicate(scope.Identity{ID: "u2"}, scope.KindWebCard)

	assert.True(t, filter.Match(pred, scope.ResourceScope{Cities: []string{"all"}}))
	assert.False(t, filter.Match(pred, scope.ResourceScope{Cities: []string{"Beijing"}, Departments: []string{"Sales"}}))
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"all"}, scope.Normalize(nil))
	assert.Equal(t, []string{}, scope.Normalize([]string{" ", ""}))
	assert.Equal(t, []string{"Shanghai"}, scope.Normalize([]string{" Shanghai "}))
	assert.Equal(t, []string{"all"}, scope.Tags(""))
	assert.Equal(t, []string{"all", "Beijing"}, scope.Tags("Beijing"))
}
