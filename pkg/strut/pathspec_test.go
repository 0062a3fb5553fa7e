package strut

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPattern_Parts_Static(t *testing.T) {
	parts, err := Pattern("/users/all").Parts()
	require.NoError(t, err)

	require.Len(t, parts, 1)
	assert.Equal(t, Part{Kind: StaticPart, Value: "/users/all"}, parts[0])
}

func TestPattern_Parts_UntypedParam(t *testing.T) {
	parts, err := Pattern("/users/{id}").Parts()
	require.NoError(t, err)

	require.Len(t, parts, 2)
	assert.Equal(t, Part{Kind: StaticPart, Value: "/users/"}, parts[0])
	assert.Equal(t, Part{Kind: ParamPart, Value: "id"}, parts[1])
}

func TestPattern_Parts_TypedParam(t *testing.T) {
	parts, err := Pattern("/users/{id:int}/files/{name:string}").Parts()
	require.NoError(t, err)

	require.Len(t, parts, 4)
	assert.Equal(t, Part{Kind: ParamPart, Value: "id", ParamType: "int"}, parts[1])
	assert.Equal(t, Part{Kind: StaticPart, Value: "/files/"}, parts[2])
	assert.Equal(t, Part{Kind: ParamPart, Value: "name", ParamType: "string"}, parts[3])
}

func TestPattern_Parts_Wildcard(t *testing.T) {
	parts, err := Pattern("/static/{*}").Parts()
	require.NoError(t, err)

	require.Len(t, parts, 2)
	assert.Equal(t, Part{Kind: WildcardPart, Value: "*"}, parts[1])
}

func TestPattern_Parts_NamedWildcard(t *testing.T) {
	parts, err := Pattern("/static/{filepath:*}").Parts()
	require.NoError(t, err)

	require.Len(t, parts, 2)
	assert.Equal(t, Part{Kind: WildcardPart, Value: "filepath"}, parts[1])
}

func TestPattern_Parts_ColonOutsideBracesIsStatic(t *testing.T) {
	parts, err := Pattern("/users/:id").Parts()
	require.NoError(t, err)

	require.Len(t, parts, 1)
	assert.Equal(t, Part{Kind: StaticPart, Value: "/users/:id"}, parts[0])
}

func TestPattern_Parts_Empty(t *testing.T) {
	parts, err := Pattern("").Parts()
	require.NoError(t, err)
	assert.Empty(t, parts)
}

func TestPattern_Parts_UnclosedBrace(t *testing.T) {
	_, err := Pattern("/users/{id").Parts()
	assert.Error(t, err)
}

func TestPattern_Params(t *testing.T) {
	params, err := Pattern("/users/{id:int}/posts/{slug}").Params()
	require.NoError(t, err)

	require.Len(t, params, 2)
	assert.Equal(t, "id", params[0].Value)
	assert.Equal(t, "int", params[0].ParamType)
	assert.Equal(t, "slug", params[1].Value)
	assert.Equal(t, "", params[1].ParamType)
}

func TestPattern_Join(t *testing.T) {
	assert.Equal(t, Pattern("/api/users"), Pattern("/api").Join("/users"))
	assert.Equal(t, Pattern("/api/users"), Pattern("/api/").Join("/users"))
	assert.Equal(t, Pattern("/api/users"), Pattern("/api").Join("users"))
	assert.Equal(t, Pattern("/users"), Pattern("").Join("/users"))
	assert.Equal(t, Pattern("/api"), Pattern("/api").Join(""))
}

func TestPattern_Raw(t *testing.T) {
	assert.Equal(t, "/users/{id}", Pattern("/users/{id}").Raw())
}
