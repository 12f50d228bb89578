package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/xreportgo/internal/schema"
)

const jsonSpec = `{
  "name": "Model Report",
  "overview": true,
  "content_table": true,
  "contents": [
    {
      "title": "Feature Importance Analysis",
      "desc": "Which inputs drive the model.",
      "component": {
        "class": "FeatureImportanceRanking",
        "attr": {
          "_comment": "documentation only",
          "trained_model": "var:clf",
          "train_data": "var:X_train",
          "k": 5
        }
      }
    },
    {
      "title": "Interpretation",
      "sections": [
        {
          "title": "Local Explanations",
          "component": {
            "class": "ModelInterpreter",
            "attr": {
              "method": "lime",
              "error_analysis": {
                "stats_type": "average_score",
                "valid_x": "var:X_test"
              }
            }
          }
        }
      ]
    }
  ],
  "writers": [
    {"class": "Html", "attr": {"name": "report", "dir": "var:out_dir"}}
  ]
}`

const yamlSpec = `name: Model Report
overview: true
content_table: true
contents:
  - title: Feature Importance Analysis
    desc: Which inputs drive the model.
    component:
      class: FeatureImportanceRanking
      attr:
        _comment: documentation only
        trained_model: "var:clf"
        train_data: "var:X_train"
        k: 5
  - title: Interpretation
    sections:
      - title: Local Explanations
        component:
          class: ModelInterpreter
          attr:
            method: lime
            error_analysis:
              stats_type: average_score
              valid_x: "var:X_test"
writers:
  - class: Html
    attr:
      name: report
      dir: "var:out_dir"
`

const hclSpec = `report "Model Report" {
  overview      = true
  content_table = true

  section "Feature Importance Analysis" {
    desc = "Which inputs drive the model."

    component "FeatureImportanceRanking" {
      trained_model = "var:clf"
      train_data    = "var:X_train"
      k             = 5
    }
  }

  section "Interpretation" {
    section "Local Explanations" {
      component "ModelInterpreter" {
        method = "lime"
        error_analysis = {
          stats_type = "average_score"
          valid_x    = "var:X_test"
        }
      }
    }
  }

  writer "Html" {
    name = "report"
    dir  = "var:out_dir"
  }
}`

// specCmpOpts compares schema models with cty literal equality.
var specCmpOpts = cmp.Options{
	cmp.Comparer(func(a, b cty.Value) bool { return a.RawEquals(b) }),
}

func TestJSONLoaderParsesFullSpec(t *testing.T) {
	spec, err := (&JSONLoader{}).LoadBytes(context.Background(), []byte(jsonSpec), "spec.json")
	require.NoError(t, err)

	assert.Equal(t, "Model Report", spec.Name)
	assert.True(t, spec.Overview)
	assert.True(t, spec.ContentTable)
	require.Len(t, spec.Contents, 2)
	require.Len(t, spec.Writers, 1)

	fi := spec.Contents[0]
	assert.Equal(t, "Feature Importance Analysis", fi.Title)
	assert.Equal(t, "Which inputs drive the model.", fi.Desc)
	require.NotNil(t, fi.Component)
	assert.Equal(t, "FeatureImportanceRanking", fi.Component.Class)
	assert.NotContains(t, fi.Component.Attr, schema.CommentKey, "comment attrs are dropped")
	assert.Equal(t, schema.Ref("clf"), fi.Component.Attr["trained_model"])

	nested := spec.Contents[1].Sections[0].Component
	require.Equal(t, schema.AttrMap, nested.Attr["error_analysis"].Kind)
	assert.Equal(t, schema.Ref("X_test"), nested.Attr["error_analysis"].Map["valid_x"])

	w := spec.Writers[0]
	assert.Equal(t, "Html", w.Class)
	assert.Equal(t, schema.Ref("out_dir"), w.Attr["dir"])
}

func TestYAMLLoadsToSameModelAsJSON(t *testing.T) {
	fromJSON, err := (&JSONLoader{}).LoadBytes(context.Background(), []byte(jsonSpec), "spec.json")
	require.NoError(t, err)
	fromYAML, err := (&YAMLLoader{}).LoadBytes(context.Background(), []byte(yamlSpec), "spec.yaml")
	require.NoError(t, err)

	if diff := cmp.Diff(fromJSON, fromYAML, specCmpOpts); diff != "" {
		t.Fatalf("YAML model differs from JSON model (-json +yaml):\n%s", diff)
	}
}

func TestHCLLoaderParsesFullSpec(t *testing.T) {
	spec, err := (&HCLLoader{}).LoadBytes(context.Background(), []byte(hclSpec), "spec.hcl")
	require.NoError(t, err)

	assert.Equal(t, "Model Report", spec.Name)
	assert.True(t, spec.Overview)
	require.Len(t, spec.Contents, 2)
	assert.Equal(t, "Feature Importance Analysis", spec.Contents[0].Title)
	assert.Equal(t, schema.Ref("X_train"), spec.Contents[0].Component.Attr["train_data"])

	nested := spec.Contents[1].Sections[0].Component.Attr["error_analysis"]
	require.Equal(t, schema.AttrMap, nested.Kind)
	assert.Equal(t, schema.Lit(cty.StringVal("average_score")), nested.Map["stats_type"])
	assert.Equal(t, schema.Ref("X_test"), nested.Map["valid_x"])

	require.Len(t, spec.Writers, 1)
	assert.Equal(t, schema.Ref("out_dir"), spec.Writers[0].Attr["dir"])
}

func TestJSONLoaderRejectsStructuralProblems(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want string
	}{
		{name: "not json", src: `report "x" {}`, want: "invalid"},
		{name: "missing name", src: `{"contents": []}`, want: `"name"`},
		{name: "contents not array", src: `{"name": "r", "contents": {}}`, want: "must be an array"},
		{name: "section missing title", src: `{"name": "r", "contents": [{"desc": "d"}]}`, want: `"title"`},
		{name: "component missing class", src: `{"name": "r", "contents": [{"title": "t", "component": {}}]}`, want: `"class"`},
		{name: "attr not object", src: `{"name": "r", "writers": [{"class": "Html", "attr": 3}]}`, want: "attr must be an object"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := (&JSONLoader{}).LoadBytes(context.Background(), []byte(tc.src), "bad.json")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestForPathSelectsByExtension(t *testing.T) {
	jsonLdr, err := ForPath("reports/spec.JSON")
	require.NoError(t, err)
	assert.IsType(t, &JSONLoader{}, jsonLdr)

	ymlLdr, err := ForPath("spec.yml")
	require.NoError(t, err)
	assert.IsType(t, &YAMLLoader{}, ymlLdr)

	hclLdr, err := ForPath("spec.hcl")
	require.NoError(t, err)
	assert.IsType(t, &HCLLoader{}, hclLdr)

	_, err = ForPath("spec.toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported spec format")
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spec.json")
	require.NoError(t, os.WriteFile(path, []byte(jsonSpec), 0o644))

	spec, err := FromFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Model Report", spec.Name)

	_, err = FromFile(context.Background(), filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}
