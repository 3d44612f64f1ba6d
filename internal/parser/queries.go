package parser

// Capture queries per language. Capture names follow one convention across
// every grammar: `definition.<kind>` for symbol definitions (paired with a
// `@name` capture), `import` / `import.source` for import specifiers,
// `call` / `call.name` for call sites, and `heritage.*` for
// extends/implements/trait relationships.

const goQuery = `
(function_declaration name: (identifier) @name) @definition.function
(method_declaration name: (field_identifier) @name) @definition.method
(type_declaration (type_spec name: (type_identifier) @name type: (struct_type))) @definition.struct
(type_declaration (type_spec name: (type_identifier) @name type: (interface_type))) @definition.interface
(type_declaration (type_spec name: (type_identifier) @name)) @definition.typedef
(const_declaration (const_spec name: (identifier) @name)) @definition.const
(var_declaration (var_spec name: (identifier) @name)) @definition.static
(import_spec path: (interpreted_string_literal) @import.source) @import
(call_expression function: (identifier) @call.name) @call
(call_expression function: (selector_expression field: (field_identifier) @call.name)) @call
`

const jsQuery = `
(function_declaration name: (identifier) @name) @definition.function
(generator_function_declaration name: (identifier) @name) @definition.function
(variable_declarator name: (identifier) @name value: [(arrow_function) (function_expression) (generator_function)]) @definition.function
(method_definition name: (property_identifier) @name) @definition.method
(class_declaration name: (identifier) @name) @definition.class
(class_declaration name: (identifier) @name.heritage (class_heritage (identifier) @heritage.extends)) @heritage.class
(import_statement source: (string) @import.source) @import
(call_expression function: (identifier) @call.name) @call
(call_expression function: (member_expression property: (property_identifier) @call.name)) @call
`

const tsQuery = `
(function_declaration name: (identifier) @name) @definition.function
(generator_function_declaration name: (identifier) @name) @definition.function
(method_definition name: (property_identifier) @name) @definition.method
(function_expression name: (identifier) @name) @definition.function
(class_declaration name: (type_identifier) @name) @definition.class
(interface_declaration name: (type_identifier) @name) @definition.interface
(type_alias_declaration name: (type_identifier) @name) @definition.typealias
(enum_declaration name: (identifier) @name) @definition.enum
(class_declaration name: (type_identifier) @name.heritage (class_heritage (extends_clause (identifier) @heritage.extends))) @heritage.class
(class_declaration name: (type_identifier) @name.heritage (class_heritage (implements_clause (type_identifier) @heritage.implements))) @heritage.class
(import_statement source: (string) @import.source) @import
(call_expression function: (identifier) @call.name) @call
(call_expression function: (member_expression property: (property_identifier) @call.name)) @call
`

const pyQuery = `
(function_definition name: (identifier) @name) @definition.function
(class_definition body: (block (function_definition name: (identifier) @name) @definition.method))
(class_definition name: (identifier) @name) @definition.class
(class_definition name: (identifier) @name.heritage superclasses: (argument_list (identifier) @heritage.extends)) @heritage.class
(import_statement name: (dotted_name) @import.source) @import
(import_from_statement module_name: (dotted_name) @import.source) @import
(import_from_statement module_name: (relative_import) @import.source) @import
(call function: (identifier) @call.name) @call
(call function: (attribute attribute: (identifier) @call.name)) @call
`
