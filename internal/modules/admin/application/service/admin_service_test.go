package service

import (
	"context"
	"sort"
	"testing"
	"time"

	accessService "TutorHub/internal/modules/access/application/service"
	"TutorHub/internal/modules/access/domain/scope"
	"TutorHub/internal/modules/admin/application/dto/request"
	"TutorHub/internal/modules/admin/domain/entity"
	userRespond "TutorHub/internal/modules/user/application/dto/respond"
	userEntity "TutorHub/internal/modules/user/domain/entity"
	"TutorHub/pkg/docstore"
	"TutorHub/pkg/filter"
	"TutorHub/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users   map[string]*userEntity.UserInfo
	bumped  []string
	updates map[string]map[string]any
}

func newFakeUserRepo(users ...*userEntity.UserInfo) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*userEntity.UserInfo{}, updates: map[string]map[string]any{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) CreateUserInfo(_ context.Context, u *userEntity.UserInfo) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetUserInfoByID(_ context.Context, id string) (*userEntity.UserInfo, error) {
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetUserInfoByAccount(_ context.Context, account string) (*userEntity.UserInfo, error) {
	return nil, nil
}

func (r *fakeUserRepo) ExistsBy(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

func (r *fakeUserRepo) UpdateUserInfo(_ context.Context, id string, fields map[string]any) error {
	r.updates[id] = fields
	if v, ok := fields["password"]; ok {
		r.users[id].Password = v.(string)
	}
	return nil
}

func (r *fakeUserRepo) BumpTokenVersion(_ context.Context, id string) error {
	r.bumped = append(r.bumped, id)
	return nil
}

func (r *fakeUserRepo) ListUsers(_ context.Context, where filter.Expr, opts docstore.FindOptions) ([]userEntity.UserInfo, int64, error) {
	var out []userEntity.UserInfo
	for _, u := range r.users {
		if filter.Match(where, u) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if opts.Offset >= len(out) {
		return nil, total, nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, total, nil
}

var (
	superAdmin = scope.Identity{ID: "root", IsAdmin: true}
	shAdmin    = scope.Identity{ID: "sh-admin", IsAdmin: true, HomeCity: "上海"}
	lecturer   = scope.Identity{ID: "t1", HomeCity: "上海", HomeDepartment: "教研部"}
)

func seedUsers() *fakeUserRepo {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return newFakeUserRepo(
		&userEntity.UserInfo{ID: "u1", Username: "zhangsan", Mobile: "13800001234", CityName: "上海", DepartmentName: "教研部", CreatedAt: t0},
		&userEntity.UserInfo{ID: "u2", Username: "lisi", Mobile: "13900005678", CityName: "北京", DepartmentName: "教研部", CreatedAt: t0.Add(time.Hour)},
		&userEntity.UserInfo{ID: "u3", Username: "wangwu", Mobile: "13700009999", CityName: "上海", DepartmentName: "销售部", CreatedAt: t0.Add(2 * time.Hour)},
	)
}

func usernames(t *testing.T, list any) []string {
	t.Helper()
	items, ok := list.([]*userRespond.UserInfoRespond)
	require.True(t, ok)
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Username)
	}
	return out
}

func TestListUsers(t *testing.T) {
	svc := NewUserAdminService(seedUsers(), accessService.NewAccessService())
	ctx := context.Background()

	_, err := svc.ListUsers(ctx, lecturer, request.ListUsersRequest{})
	assert.ErrorIs(t, err, xerr.ErrNotAdmin)

	data, err := svc.ListUsers(ctx, superAdmin, request.ListUsersRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"wangwu", "lisi", "zhangsan"}, usernames(t, data.List))

	// 城市管理员只看到本城市
	data, err = svc.ListUsers(ctx, shAdmin, request.ListUsersRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"wangwu", "zhangsan"}, usernames(t, data.List))

	data, err = svc.ListUsers(ctx, shAdmin, request.ListUsersRequest{City: "北京"})
	require.NoError(t, err)
	assert.Empty(t, usernames(t, data.List))

	data, err = svc.ListUsers(ctx, superAdmin, request.ListUsersRequest{Search: "5678"})
	require.NoError(t, err)
	assert.Equal(t, []string{"lisi"}, usernames(t, data.List))

	data, err = svc.ListUsers(ctx, superAdmin, request.ListUsersRequest{Department: "教研部", PageSize: 1, Page: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 2, data.Total)
	assert.Equal(t, []string{"zhangsan"}, usernames(t, data.List))
}

func TestUpdateUser(t *testing.T) {
	repo := seedUsers()
	svc := NewUserAdminService(repo, accessService.NewAccessService())
	ctx := context.Background()
	nick := "老王"
	isAdmin := true

	require.NoError(t, svc.UpdateUser(ctx, superAdmin, request.UpdateUserRequest{ID: "u3", Nickname: &nick, IsAdmin: &isAdmin}))
	assert.Equal(t, map[string]any{"nickname": "老王", "is_admin": true}, repo.updates["u3"])

	err := svc.UpdateUser(ctx, shAdmin, request.UpdateUserRequest{ID: "u2", Nickname: &nick})
	assert.Equal(t, "无权限管理该用户", err.(*xerr.CodeError).Message)

	err = svc.UpdateUser(ctx, superAdmin, request.UpdateUserRequest{ID: "u2"})
	assert.Equal(t, xerr.BadRequest, xerr.CodeOf(err))

	err = svc.UpdateUser(ctx, superAdmin, request.UpdateUserRequest{ID: "ghost", Nickname: &nick})
	assert.Equal(t, xerr.NotFound, xerr.CodeOf(err))

	err = svc.UpdateUser(ctx, superAdmin, request.UpdateUserRequest{Nickname: &nick})
	assert.Equal(t, xerr.BadRequest, xerr.CodeOf(err))
}

func TestUpdateUserCityAdminLimits(t *testing.T) {
	repo := seedUsers()
	svc := NewUserAdminService(repo, accessService.NewAccessService())
	ctx := context.Background()
	beijing, shanghai := "北京", " 上海 "
	isAdmin := true

	err := svc.UpdateUser(ctx, shAdmin, request.UpdateUserRequest{ID: "u1", CityName: &beijing})
	assert.Equal(t, xerr.Forbidden, xerr.CodeOf(err))
	assert.Equal(t, "城市管理员不能把用户调出本城市", err.(*xerr.CodeError).Message)

	err = svc.UpdateUser(ctx, shAdmin, request.UpdateUserRequest{ID: "u1", IsAdmin: &isAdmin})
	assert.Equal(t, xerr.Forbidden, xerr.CodeOf(err))
	assert.Empty(t, repo.updates["u1"])

	// 留在本城市可以
	require.NoError(t, svc.UpdateUser(ctx, shAdmin, request.UpdateUserRequest{ID: "u1", CityName: &shanghai}))
	assert.Equal(t, map[string]any{"city_name": "上海"}, repo.updates["u1"])

	require.NoError(t, svc.UpdateUser(ctx, superAdmin, request.UpdateUserRequest{ID: "u3", CityName: &beijing, IsAdmin: &isAdmin}))
	assert.Equal(t, map[string]any{"city_name": "北京", "is_admin": true}, repo.updates["u3"])
}

func TestResetPassword(t *testing.T) {
	repo := seedUsers()
	svc := NewUserAdminService(repo, accessService.NewAccessService())
	ctx := context.Background()

	res, err := svc.ResetPassword(ctx, superAdmin, request.ResetPasswordRequest{ID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "Tz1234", res.NewPassword)
	assert.True(t, repo.users["u1"].CheckPassword("Tz1234"))
	assert.Equal(t, []string{"u1"}, repo.bumped)

	res, err = svc.ResetPassword(ctx, superAdmin, request.ResetPasswordRequest{ID: "u2", NewPassword: "Welcome#2026"})
	require.NoError(t, err)
	assert.Equal(t, "Welcome#2026", res.NewPassword)

	_, err = svc.ResetPassword(ctx, shAdmin, request.ResetPasswordRequest{ID: "u2"})
	assert.ErrorIs(t, err, xerr.ErrForbidden)

	repo.users["u4"] = &userEntity.UserInfo{ID: "u4", Username: "nomobile"}
	_, err = svc.ResetPassword(ctx, superAdmin, request.ResetPasswordRequest{ID: "u4"})
	assert.Equal(t, xerr.BadRequest, xerr.CodeOf(err))
}

type fakeModelRepo struct {
	models  map[string]*entity.ModelConfig
	updated map[string]any
}

func (r *fakeModelRepo) GetModelByID(_ context.Context, id string) (*entity.ModelConfig, error) {
	if m, ok := r.models[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeModelRepo) GetModelByOriginalID(_ context.Context, originalID string) (*entity.ModelConfig, error) {
	for _, m := range r.models {
		if m.OriginalID == originalID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeModelRepo) ListModels(_ context.Context) ([]entity.ModelConfig, error) {
	out := make([]entity.ModelConfig, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, *m)
	}
	return out, nil
}

func (r *fakeModelRepo) CreateModel(_ context.Context, m *entity.ModelConfig) error {
	r.models[m.ID] = m
	return nil
}

func (r *fakeModelRepo) UpdateModel(_ context.Context, _ string, fields map[string]any) error {
	r.updated = fields
	return nil
}

func (r *fakeModelRepo) DeleteModel(_ context.Context, id string) error {
	delete(r.models, id)
	return nil
}

func TestModelService(t *testing.T) {
	repo := &fakeModelRepo{models: map[string]*entity.ModelConfig{
		"m1": {ID: "m1", OriginalID: "legacy-1", Name: "gpt-4o-mini", ModelType: "openai", APIURL: "https://api.example.com/v1", APIKey: "sk-1234567890abcd"},
	}}
	svc := NewModelService(repo, accessService.NewAccessService())
	ctx := context.Background()

	_, err := svc.ListModels(ctx, lecturer)
	assert.ErrorIs(t, err, xerr.ErrNotAdmin)

	items, err := svc.ListModels(ctx, superAdmin)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, entity.ProviderOpenAICompatible, items[0].ModelType)
	assert.NotContains(t, items[0].APIKey, "567890")

	_, err = svc.CreateModel(ctx, superAdmin, request.CreateModelRequest{Name: "x", APIURL: "https://x"})
	assert.Equal(t, xerr.BadRequest, xerr.CodeOf(err))

	_, err = svc.CreateModel(ctx, superAdmin, request.CreateModelRequest{Name: "x", APIURL: "https://x", APIKey: "k", ModelType: "claude"})
	assert.Equal(t, "不支持的模型类型", err.(*xerr.CodeError).Message)

	created, err := svc.CreateModel(ctx, superAdmin, request.CreateModelRequest{Name: "kb", APIURL: "https://kb", APIKey: "k", ModelType: "volcengine", VendorServiceID: "svc-1"})
	require.NoError(t, err)
	assert.Equal(t, entity.ProviderVendorKnowledgeBase, repo.models[created.ID].ModelType)

	// 回传打码后的密钥不会覆盖原值
	masked := items[0].APIKey
	name := "gpt-4o"
	require.NoError(t, svc.UpdateModel(ctx, superAdmin, request.UpdateModelRequest{ID: "m1", Name: &name, APIKey: &masked}))
	assert.Equal(t, map[string]any{"name": "gpt-4o"}, repo.updated)

	require.NoError(t, svc.DeleteModel(ctx, superAdmin, created.ID))
	assert.NotContains(t, repo.models, created.ID)

	err = svc.DeleteModel(ctx, superAdmin, "nope")
	assert.Equal(t, xerr.NotFound, xerr.CodeOf(err))
}

func TestLookupModelFallsBackToOriginalID(t *testing.T) {
	repo := &fakeModelRepo{models: map[string]*entity.ModelConfig{
		"m1": {ID: "m1", OriginalID: "legacy-1", Name: "gpt-4o-mini"},
	}}
	ctx := context.Background()

	m, err := LookupModel(ctx, repo, "m1")
	require.NoError(t, err)
	assert.Equal(t, "m1", m.ID)

	m, err = LookupModel(ctx, repo, "legacy-1")
	require.NoError(t, err)
	assert.Equal(t, "m1", m.ID)

	m, err = LookupModel(ctx, repo, "  ")
	require.NoError(t, err)
	assert.Nil(t, m)
}

type fakeCityRepo struct {
	cities map[string]*entity.City
}

func (r *fakeCityRepo) GetCityByID(_ context.Context, id string) (*entity.City, error) {
	return r.cities[id], nil
}

func (r *fakeCityRepo) ListCities(_ context.Context) ([]entity.City, error) {
	var out []entity.City
	for _, c := range r.cities {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCityRepo) CreateCity(_ context.Context, c *entity.City) error {
	r.cities[c.ID] = c
	return nil
}

func (r *fakeCityRepo) UpdateCity(_ context.Context, id string, fields map[string]any) error {
	if v, ok := fields["name"]; ok {
		r.cities[id].Name = v.(string)
	}
	return nil
}

func (r *fakeCityRepo) DeleteCity(_ context.Context, id string) error {
	delete(r.cities, id)
	return nil
}

type fakeDepartmentRepo struct {
	departments map[string]*entity.Department
}

func (r *fakeDepartmentRepo) GetDepartmentByID(_ context.Context, id string) (*entity.Department, error) {
	return r.departments[id], nil
}

func (r *fakeDepartmentRepo) ListDepartments(_ context.Context) ([]entity.Department, error) {
	var out []entity.Department
	for _, d := range r.departments {
		out = append(out, *d)
	}
	return out, nil
}

func (r *fakeDepartmentRepo) CreateDepartment(_ context.Context, d *entity.Department) error {
	r.departments[d.ID] = d
	return nil
}

func (r *fakeDepartmentRepo) UpdateDepartment(_ context.Context, id string, fields map[string]any) error {
	if v, ok := fields["sort_order"]; ok {
		r.departments[id].SortOrder = v.(int)
	}
	return nil
}

func (r *fakeDepartmentRepo) DeleteDepartment(_ context.Context, id string) error {
	delete(r.departments, id)
	return nil
}

func TestDictionaryService(t *testing.T) {
	cities := &fakeCityRepo{cities: map[string]*entity.City{}}
	departments := &fakeDepartmentRepo{departments: map[string]*entity.Department{}}
	svc := NewDictionaryService(cities, departments, accessService.NewAccessService())
	ctx := context.Background()

	_, err := svc.CreateCity(ctx, superAdmin, request.CreateCityRequest{Name: "杭州"})
	assert.Equal(t, "城市名称和代码必填", err.(*xerr.CodeError).Message)

	city, err := svc.CreateCity(ctx, superAdmin, request.CreateCityRequest{Name: "杭州", Code: "HZ"})
	require.NoError(t, err)
	newName := " 杭州市 "
	require.NoError(t, svc.UpdateCity(ctx, superAdmin, request.UpdateCityRequest{ID: city.ID, Name: &newName}))
	list, err := svc.ListCities(ctx, superAdmin)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "杭州市", list[0].Name)
	assert.True(t, list[0].IsActive)

	_, err = svc.ListCities(ctx, lecturer)
	assert.ErrorIs(t, err, xerr.ErrNotAdmin)

	require.NoError(t, svc.DeleteCity(ctx, superAdmin, city.ID))
	err = svc.DeleteCity(ctx, superAdmin, city.ID)
	assert.Equal(t, xerr.NotFound, xerr.CodeOf(err))

	_, err = svc.CreateDepartment(ctx, superAdmin, request.CreateDepartmentRequest{})
	assert.Equal(t, "部门名称必填", err.(*xerr.CodeError).Message)

	dept, err := svc.CreateDepartment(ctx, superAdmin, request.CreateDepartmentRequest{Name: "教研部"})
	require.NoError(t, err)
	order := 3
	require.NoError(t, svc.UpdateDepartment(ctx, superAdmin, request.UpdateDepartmentRequest{ID: dept.ID, SortOrder: &order}))
	depts, err := svc.ListDepartments(ctx, superAdmin)
	require.NoError(t, err)
	assert.Equal(t, 3, depts[0].SortOrder)

	err = svc.UpdateDepartment(ctx, superAdmin, request.UpdateDepartmentRequest{ID: dept.ID})
	assert.Equal(t, xerr.BadRequest, xerr.CodeOf(err))
	err = svc.DeleteDepartment(ctx, superAdmin, "")
	assert.Equal(t, "缺少部门ID", err.(*xerr.CodeError).Message)
}
