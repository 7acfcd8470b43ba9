package check

import (
	"github.com/amunlang/amun/pkg/ast"
	"github.com/amunlang/amun/pkg/mangle"
	"github.com/amunlang/amun/pkg/token"
	"github.com/amunlang/amun/pkg/types"
)

// resolveType fully resolves t against the current generic substitution
// environment and the struct/enum declarations collected by the parser.
// A bare GenericParameterType produced by the parser means one of two
// things: a genuine generic parameter bound in genericEnv, or a forward
// reference to a struct/enum the parser hadn't yet added to the
// AliasTable at the point the type was parsed (§4.5's generic struct
// resolution is the same lazy-resolution mechanism applied to plain
// forward references).
func (c *Checker) resolveType(t types.Type) types.Type {
	switch v := t.(type) {
	case nil:
		return nil
	case *types.GenericParameterType:
		if bound, ok := c.genericEnv[v.Name]; ok {
			return bound
		}
		if decl, ok := c.Structures[v.Name]; ok && !decl.IsGeneric() {
			if resolved, ok := c.Aliases.Lookup(v.Name); ok {
				return resolved
			}
		}
		if _, ok := c.Enumerations[v.Name]; ok {
			if resolved, ok := c.Aliases.Lookup(v.Name); ok {
				return resolved
			}
		}
		return v
	case *types.PointerType:
		return &types.PointerType{Base: c.resolveType(v.Base)}
	case *types.StaticArrayType:
		return &types.StaticArrayType{Element: c.resolveType(v.Element), Size: v.Size}
	case *types.FunctionType:
		params := make([]types.Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = c.resolveType(p)
		}
		return &types.FunctionType{
			Name: v.Name, Params: params, Return: c.resolveType(v.Return),
			HasVarargs: v.HasVarargs, VarargsType: v.VarargsType, IsIntrinsic: v.IsIntrinsic,
			IsGeneric: v.IsGeneric, GenericNames: v.GenericNames, ImplicitParamsCount: v.ImplicitParamsCount,
		}
	case *types.TupleType:
		fields := make([]types.Type, len(v.FieldTypes))
		for i, f := range v.FieldTypes {
			fields[i] = c.resolveType(f)
		}
		return &types.TupleType{Name: mangle.TupleName(fields), FieldTypes: fields}
	case *types.GenericStructType:
		args := make([]types.Type, len(v.TypeArgs))
		for i, a := range v.TypeArgs {
			args[i] = c.resolveType(a)
		}
		return c.resolveGenericStruct(v.TemplateName, args)
	default:
		return t
	}
}

// resolveGenericStruct implements §4.5's generic struct resolution:
// build (or fetch from the instantiation cache) a concrete StructType
// named template<mangle(args)> whose fields are resolved under the
// argument substitution.
func (c *Checker) resolveGenericStruct(templateName string, args []types.Type) types.Type {
	mangled := mangle.GenericStructName(templateName, args)
	if cached, ok := c.instantiatedTypes[mangled]; ok {
		return cached
	}

	decl, ok := c.Structures[templateName]
	if !ok {
		return &types.GenericStructType{TemplateName: templateName, TypeArgs: args}
	}

	saved := c.genericEnv
	c.genericEnv = make(map[string]types.Type, len(decl.GenericParamNames))
	for k, v := range saved {
		c.genericEnv[k] = v
	}
	for i, name := range decl.GenericParamNames {
		if i < len(args) {
			c.genericEnv[name] = args[i]
		}
	}

	fieldNames := make([]string, len(decl.Fields))
	fieldTypes := make([]types.Type, len(decl.Fields))

	// Insert a placeholder before resolving fields so a recursive field
	// (a struct containing *Self<T>) can find itself mid-resolution.
	placeholder := &types.StructType{
		Name: mangled, FieldNames: fieldNames, FieldTypes: fieldTypes,
		IsPacked: decl.IsPacked, IsExtern: decl.IsExtern,
	}
	c.instantiatedTypes[mangled] = placeholder

	for i, f := range decl.Fields {
		fieldNames[i] = f.Name
		fieldTypes[i] = c.resolveType(f.Type)
	}

	c.genericEnv = saved
	return placeholder
}

// inferType unifies param (possibly containing GenericParameters) with
// arg, collecting bindings into env, per §4.5 step 2: "structurally
// descends pointers, arrays, generic-structs, tuples, and function
// pointers, collecting bindings for each GenericParameter."
func inferType(param, arg types.Type, env map[string]types.Type) {
	if param == nil || arg == nil {
		return
	}
	switch p := param.(type) {
	case *types.GenericParameterType:
		if _, bound := env[p.Name]; !bound {
			env[p.Name] = arg
		}
	case *types.PointerType:
		if a, ok := arg.(*types.PointerType); ok {
			inferType(p.Base, a.Base, env)
		}
	case *types.StaticArrayType:
		if a, ok := arg.(*types.StaticArrayType); ok {
			inferType(p.Element, a.Element, env)
		}
	case *types.GenericStructType:
		if a, ok := arg.(*types.GenericStructType); ok && a.TemplateName == p.TemplateName {
			for i := range p.TypeArgs {
				if i < len(a.TypeArgs) {
					inferType(p.TypeArgs[i], a.TypeArgs[i], env)
				}
			}
		} else if a, ok := arg.(*types.StructType); ok {
			// arg has already been instantiated into a concrete struct;
			// recover its generic argument types to unify against.
			for i := range p.TypeArgs {
				if i < len(a.GenericParamTypes) {
					inferType(p.TypeArgs[i], a.GenericParamTypes[i], env)
				}
			}
		}
	case *types.TupleType:
		if a, ok := arg.(*types.TupleType); ok {
			for i := range p.FieldTypes {
				if i < len(a.FieldTypes) {
					inferType(p.FieldTypes[i], a.FieldTypes[i], env)
				}
			}
		}
	case *types.FunctionType:
		if a, ok := arg.(*types.FunctionType); ok {
			for i := range p.Params {
				if i < len(a.Params) {
					inferType(p.Params[i], a.Params[i], env)
				}
			}
			inferType(p.Return, a.Return, env)
		}
	}
}

// substitute applies env to t, leaving unbound generic parameters as-is
// (a missing binding is reported separately by the caller, §4.5 step 3).
func substitute(t types.Type, env map[string]types.Type) types.Type {
	switch v := t.(type) {
	case *types.GenericParameterType:
		if bound, ok := env[v.Name]; ok {
			return bound
		}
		return v
	case *types.PointerType:
		return &types.PointerType{Base: substitute(v.Base, env)}
	case *types.StaticArrayType:
		return &types.StaticArrayType{Element: substitute(v.Element, env), Size: v.Size}
	case *types.GenericStructType:
		args := make([]types.Type, len(v.TypeArgs))
		for i, a := range v.TypeArgs {
			args[i] = substitute(a, env)
		}
		return &types.GenericStructType{TemplateName: v.TemplateName, TypeArgs: args}
	case *types.TupleType:
		fields := make([]types.Type, len(v.FieldTypes))
		for i, f := range v.FieldTypes {
			fields[i] = substitute(f, env)
		}
		return &types.TupleType{Name: mangle.TupleName(fields), FieldTypes: fields}
	case *types.FunctionType:
		params := make([]types.Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = substitute(p, env)
		}
		return &types.FunctionType{Name: v.Name, Params: params, Return: substitute(v.Return, env), HasVarargs: v.HasVarargs}
	default:
		return t
	}
}

// instantiateGenericCall resolves a call to a generic function, per
// §4.5's four-step algorithm: explicit generic args win outright;
// otherwise unify params against argument types; require a binding for
// every declared generic parameter; substitute, re-check the body under
// the substitution, and memoize by mangled name.
func (c *Checker) instantiateGenericCall(callSpan token.Span, decl *ast.FunctionDeclaration, explicitArgs []types.Type, argTypes []types.Type) (*types.FunctionType, error) {
	env := make(map[string]types.Type, len(decl.Proto.GenericNames))
	if len(explicitArgs) > 0 {
		for i, name := range decl.Proto.GenericNames {
			if i < len(explicitArgs) {
				env[name] = explicitArgs[i]
			}
		}
	} else {
		for i, param := range decl.Proto.Params {
			if i < len(argTypes) {
				inferType(param.Type, argTypes[i], env)
			}
		}
	}

	for _, name := range decl.Proto.GenericNames {
		if _, ok := env[name]; !ok {
			return nil, c.errorf(callSpan, "not enough information to infer generic parameter %q of %q", name, decl.Proto.Name)
		}
	}

	params := make([]types.Type, len(decl.Proto.Params))
	for i, p := range decl.Proto.Params {
		params[i] = substitute(p.Type, env)
	}
	ret := substitute(decl.Proto.Return, env)
	mangled := decl.Proto.Name + mangle.Types(params)

	if cached, ok := c.instantiatedFuncs[mangled]; ok {
		return cached, nil
	}

	instFn := &types.FunctionType{Name: mangled, Params: params, Return: ret, HasVarargs: decl.Proto.HasVarargs}
	// Insert before re-checking the body so a recursive call to the same
	// instantiation finds it already memoized instead of looping.
	c.instantiatedFuncs[mangled] = instFn

	savedEnv := c.genericEnv
	c.genericEnv = make(map[string]types.Type, len(env))
	for k, v := range savedEnv {
		c.genericEnv[k] = v
	}
	for k, v := range env {
		c.genericEnv[k] = v
	}

	c.typesTable.Push()
	for i, p := range decl.Proto.Params {
		c.typesTable.Define(p.Name, params[i])
	}
	c.returnTypesStack = append(c.returnTypesStack, ret)
	var bodyErr error
	if decl.ExprBody != nil {
		_, bodyErr = c.inferExpr(decl.ExprBody)
	} else if decl.Body != nil {
		bodyErr = c.checkStatement(decl.Body)
	}
	c.returnTypesStack = c.returnTypesStack[:len(c.returnTypesStack)-1]
	c.typesTable.Pop()
	c.genericEnv = savedEnv

	if bodyErr != nil {
		return nil, bodyErr
	}
	return instFn, nil
}
