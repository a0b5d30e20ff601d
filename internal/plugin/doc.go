// package plugin defines the provider descriptor and the capability
// function tables that loadable units implement.
//
// A provider declares exactly one capability type (transport, playlist,
// input, effect, output, visualization, general, interface). The host
// dispatches on the declared [Type], never on the dynamic Go type; the
// per-capability interfaces in this package are the function tables the
// descriptor carries.
package plugin
