package script

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/corpusgen/internal/config"
	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
	"git.home.luguber.info/inful/corpusgen/internal/jsparse"
)

func newTransformer() *Transformer {
	return New(config.Default().Script, nil)
}

func TestTransform_FullScript(t *testing.T) {
	body := `
import * as THREE from 'three'
import { OrbitControls } from 'three/examples/jsm/controls/OrbitControls'
import { useLoaders, onLinkClick } from '@/composables'
import ExampleLayout from '@/layouts/ExampleLayout.vue'

// for analysis
useLoaders(['gltf', 'draco'])

const init = (ctx) => {
  // keep me
  const scene = new THREE.Scene()
  return scene
};
`
	res, err := newTransformer().Transform(context.Background(), body, jsparse.JavaScript)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"import * as THREE from 'three'",
		"import { OrbitControls } from 'three/examples/jsm/controls/OrbitControls'",
	}, res.ImportLines)
	assert.Equal(t, "['gltf', 'draco']", res.LoaderArrayText)
	assert.Equal(t, "(ctx) => {\n  // keep me\n  const scene = new THREE.Scene()\n  return scene\n}", res.InitExpression)
}

func TestTransform_ImportMixingReservedIsHoisted(t *testing.T) {
	body := "import { useLoaders, helper } from './util'\nconst init = () => {}\n"
	res, err := newTransformer().Transform(context.Background(), body, jsparse.JavaScript)
	require.NoError(t, err)
	assert.Equal(t, []string{"import { useLoaders, helper } from './util'"}, res.ImportLines)
}

func TestTransform_SideEffectImportIsHoisted(t *testing.T) {
	body := "import './polyfill'\nconst init = () => {}\n"
	res, err := newTransformer().Transform(context.Background(), body, jsparse.JavaScript)
	require.NoError(t, err)
	assert.Equal(t, []string{"import './polyfill'"}, res.ImportLines)
}

func TestTransform_NoLoaderCallYieldsEmptyArray(t *testing.T) {
	res, err := newTransformer().Transform(context.Background(), "const init = () => {}", jsparse.JavaScript)
	require.NoError(t, err)
	assert.Equal(t, EmptyLoaders, res.LoaderArrayText)
	assert.Empty(t, res.ImportLines)
}

func TestTransform_FormattingIndependent(t *testing.T) {
	body := "import{useLoaders}from'@/c';useLoaders(\n  [\n    'hdr'\n  ]\n);export let init=(a)=>a"
	res, err := newTransformer().Transform(context.Background(), body, jsparse.JavaScript)
	require.NoError(t, err)
	assert.Empty(t, res.ImportLines)
	assert.Equal(t, "[\n    'hdr'\n  ]", res.LoaderArrayText)
	assert.Equal(t, "(a)=>a", res.InitExpression)
}

func TestTransform_TypeScript(t *testing.T) {
	body := "import type { Ctx } from './types'\nconst init = (ctx: Ctx): void => {\n  ctx.run()\n}\n"
	res, err := newTransformer().Transform(context.Background(), body, jsparse.TypeScript)
	require.NoError(t, err)
	assert.Equal(t, []string{"import type { Ctx } from './types'"}, res.ImportLines)
	assert.Equal(t, "(ctx: Ctx): void => {\n  ctx.run()\n}", res.InitExpression)
}

func TestTransform_ManualTransformRequired(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"extra statement", "const helper = 1\nconst init = () => {}"},
		{"function declaration", "function init() {}"},
		{"init not parenthesised", "const init = async () => {}"},
		{"init is identifier arrow", "const init = ctx => ctx"},
		{"no init", "useLoaders([])"},
		{"other call", "setup()\nconst init = () => {}"},
		{"loader argument is a bare identifier", "useLoaders(loaders)\nconst init = () => {}"},
		{"loader call with extra argument", "useLoaders(['gltf'], extra)\nconst init = () => {}"},
		{"loader argument is a string", "useLoaders('gltf')\nconst init = () => {}"},
		{"duplicate loader call", "useLoaders([])\nuseLoaders([])\nconst init = () => {}"},
		{"syntax error", "const init = (() => {"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTransformer().Transform(context.Background(), tt.body, jsparse.JavaScript)
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryTransform), "got %v", err)
		})
	}
}

func TestTransform_OtherCommentsDropped(t *testing.T) {
	body := "/* header */\nconst init = () => {}\n// trailing\n"
	res, err := newTransformer().Transform(context.Background(), body, jsparse.JavaScript)
	require.NoError(t, err)
	assert.Equal(t, "() => {}", res.InitExpression)
}
