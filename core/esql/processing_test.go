package esql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereJoinsExpressionsWithAnd(t *testing.T) {
	text, err := From("employees").Where("salary > 50000", "still_hired == true").Render()
	require.NoError(t, err)
	assert.Equal(t, "FROM employees\n| WHERE salary > 50000 AND still_hired == true", text)
}

func TestKeepAndDropAllowPatterns(t *testing.T) {
	text, err := From("employees").Keep("first_name", "*_name").Drop("salary").Render()
	require.NoError(t, err)
	assert.Equal(t, "FROM employees\n| KEEP first_name, *_name\n| DROP salary", text)
}

func TestKeepQuotesSpecialColumns(t *testing.T) {
	text, err := From("employees").Keep("first name").Render()
	require.NoError(t, err)
	assert.Equal(t, "FROM employees\n| KEEP `first name`", text)
}

func TestRename(t *testing.T) {
	text, err := From("employees").
		Rename(As("first_name", "fn"), As("last_name", "ln")).
		Render()
	require.NoError(t, err)
	assert.Equal(t, "FROM employees\n| RENAME first_name AS fn, last_name AS ln", text)
}

func TestSortFormatsTokensIndependently(t *testing.T) {
	text, err := From("employees").Sort("height DESC", "first_name ASC NULLS FIRST").Render()
	require.NoError(t, err)
	assert.Equal(t, "FROM employees\n| SORT height DESC, first_name ASC NULLS FIRST", text)
}

func TestLimit(t *testing.T) {
	text, err := From("employees").Limit(100).Render()
	require.NoError(t, err)
	assert.Equal(t, "FROM employees\n| LIMIT 100", text)
}

func TestStatsPositional(t *testing.T) {
	text, err := From("employees").Stats("AVG(salary)", "COUNT(*)").Render()
	require.NoError(t, err)
	assert.Equal(t, "FROM employees\n| STATS AVG(salary), COUNT(*)", text)
}

func TestStatsNamedWithGrouping(t *testing.T) {
	text, err := From("employees").
		Stats(Named("avg_salary", "AVG(salary)")).
		By("country").
		Render()
	require.NoError(t, err)
	assert.Equal(t, "FROM employees\n| STATS avg_salary = AVG(salary)\n        BY country", text)
}

func TestStatsGroupingOnly(t *testing.T) {
	text, err := From("employees").Stats().By("country", "gender").Render()
	require.NoError(t, err)
	assert.Equal(t, "FROM employees\n| STATS\n        BY country, gender", text)
}

func TestStatsRejectsMixedForms(t *testing.T) {
	query := From("employees").Stats("AVG(salary)", Named("count", "COUNT(*)"))
	// The error is reported at the call, before any rendering.
	require.Error(t, query.Err())
	assert.Contains(t, query.Err().Error(), "not both")
}

func TestEvalNamed(t *testing.T) {
	text, err := From("employees").
		Eval(Named("height_ft", "height * 3.281"), Named("height_cm", "height * 100")).
		Render()
	require.NoError(t, err)
	assert.Equal(t, "FROM employees\n| EVAL height_ft = height * 3.281, height_cm = height * 100", text)
}

func TestEvalPositional(t *testing.T) {
	text, err := From("employees").Eval("height * 3.281").Render()
	require.NoError(t, err)
	assert.Equal(t, "FROM employees\n| EVAL height * 3.281", text)
}

func TestEvalRejectsMixedForms(t *testing.T) {
	query := From("employees").Eval("a + 1", Named("b", "a + 2"))
	assert.Error(t, query.Err())
}

func TestEnrichPolicyOnly(t *testing.T) {
	text, err := From("employees").Enrich("languages_policy").Render()
	require.NoError(t, err)
	assert.Equal(t, "FROM employees\n| ENRICH languages_policy", text)
}

func TestEnrichWithAllClauses(t *testing.T) {
	text, err := From("employees").
		Enrich("languages_policy").
		On("language_code").
		With("language_name").
		Render()
	require.NoError(t, err)
	assert.Equal(t, "FROM employees\n| ENRICH languages_policy ON language_code WITH language_name", text)
}

func TestEnrichWithNamedMappings(t *testing.T) {
	text, err := From("employees").
		Enrich("languages_policy").
		With(Named("lang", "language_name")).
		Render()
	require.NoError(t, err)
	assert.Equal(t, "FROM employees\n| ENRICH languages_policy WITH lang = language_name", text)
}

func TestEnrichWithRejectsMixedForms(t *testing.T) {
	query := From("employees").
		Enrich("languages_policy").
		With("language_name", Named("lang", "language_name"))
	assert.Error(t, query.Err())
}

func TestLookupJoinRequiresOnAtRenderTime(t *testing.T) {
	query := From("employees").LookupJoin("host_inventory")
	// Construction succeeds; the missing continuation is a render error.
	require.NoError(t, query.Err())
	_, err := query.Render()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ON")
}

func TestLookupJoin(t *testing.T) {
	text, err := From("employees").LookupJoin("host_inventory").On("host_id").Render()
	require.NoError(t, err)
	assert.Equal(t, "FROM employees\n| LOOKUP JOIN host_inventory ON host_id", text)
}

func TestMvExpand(t *testing.T) {
	text, err := From("employees").MvExpand("languages").Render()
	require.NoError(t, err)
	assert.Equal(t, "FROM employees\n| MV_EXPAND languages", text)
}

func TestSample(t *testing.T) {
	text, err := From("employees").Sample(0.05).Render()
	require.NoError(t, err)
	assert.Equal(t, "FROM employees\n| SAMPLE 0.05", text)
}

func TestSampleRejectsOutOfRangeProbability(t *testing.T) {
	assert.Error(t, From("employees").Sample(0).Err())
	assert.Error(t, From("employees").Sample(1).Err())
	assert.Error(t, From("employees").Sample(1.5).Err())
}

func TestDissect(t *testing.T) {
	text, err := From("employees").Dissect("full_name", "%{first_name} %{last_name}").Render()
	require.NoError(t, err)
	assert.Equal(t, `FROM employees`+"\n| "+`DISSECT full_name "%{first_name} %{last_name}"`, text)
}

func TestDissectAppendSeparator(t *testing.T) {
	text, err := From("employees").
		Dissect("full_name", "%{+name} %{+name}").
		AppendSeparator(" ").
		Render()
	require.NoError(t, err)
	assert.Equal(t, `FROM employees`+"\n| "+`DISSECT full_name "%{+name} %{+name}" APPEND_SEPARATOR=" "`, text)
}

func TestGrok(t *testing.T) {
	text, err := From("logs").Grok("message", "%{IP:client} %{WORD:method}").Render()
	require.NoError(t, err)
	assert.Equal(t, `FROM logs`+"\n| "+`GROK message "%{IP:client} %{WORD:method}"`, text)
}

func TestChangePointDefaultsAreElided(t *testing.T) {
	text, err := From("metrics").ChangePoint("requests").Render()
	require.NoError(t, err)
	assert.Equal(t, "FROM metrics\n| CHANGE_POINT requests", text)
}

func TestChangePointWithKeyAndNames(t *testing.T) {
	text, err := From("metrics").
		ChangePoint("requests").
		On("bucket").
		As("change_type", "p_value").
		Render()
	require.NoError(t, err)
	assert.Equal(t, "FROM metrics\n| CHANGE_POINT requests ON bucket AS change_type, p_value", text)
}

func TestChangePointExplicitDefaultNamesStayElided(t *testing.T) {
	text, err := From("metrics").ChangePoint("requests").As("type", "pvalue").Render()
	require.NoError(t, err)
	assert.Equal(t, "FROM metrics\n| CHANGE_POINT requests", text)
}

func TestCompletionNamed(t *testing.T) {
	text, err := From("articles").
		Completion(Named("summary", "CONCAT(\"Summarize: \", body)")).
		With("my-endpoint").
		Render()
	require.NoError(t, err)
	assert.Equal(t,
		"FROM articles\n| COMPLETION summary = CONCAT(\"Summarize: \", body)"+
			` WITH {"inference_id": "my-endpoint"}`,
		text)
}

func TestCompletionPositional(t *testing.T) {
	text, err := From("articles").Completion("prompt_column").With("my-endpoint").Render()
	require.NoError(t, err)
	assert.Equal(t, "FROM articles\n| COMPLETION prompt_column"+` WITH {"inference_id": "my-endpoint"}`, text)
}

func TestCompletionRequiresExactlyOnePrompt(t *testing.T) {
	assert.Error(t, From("articles").Completion().Err())
	assert.Error(t, From("articles").Completion("a", "b").Err())
	assert.Error(t, From("articles").Completion(Named("a", "x"), Named("b", "y")).Err())
}

func TestCompletionRequiresWithAtRenderTime(t *testing.T) {
	query := From("articles").Completion("prompt_column")
	require.NoError(t, query.Err())
	_, err := query.Render()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inference")
}
