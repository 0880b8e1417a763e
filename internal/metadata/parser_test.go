package metadata

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const northwindXML = `<?xml version="1.0" encoding="utf-8"?>
<edmx:Edmx Version="4.0" xmlns:edmx="http://docs.oasis-open.org/odata/ns/edmx">
  <edmx:DataServices>
    <Schema Namespace="NorthwindModel" xmlns="http://docs.oasis-open.org/odata/ns/edm">
      <EntityType Name="Customer">
        <Key><PropertyRef Name="CustomerID"/></Key>
        <Property Name="CustomerID" Type="Edm.String" Nullable="false" MaxLength="5"/>
        <Property Name="CompanyName" Type="Edm.String" Nullable="false" MaxLength="40"/>
        <Property Name="ContactName" Type="Edm.String" MaxLength="30"/>
        <NavigationProperty Name="Orders" Type="Collection(NorthwindModel.Order)" Partner="Customer"/>
      </EntityType>
      <EntityType Name="Order">
        <Key><PropertyRef Name="OrderID"/></Key>
        <Property Name="OrderID" Type="Edm.Int32" Nullable="false"/>
        <Property Name="CustomerID" Type="Edm.String" MaxLength="5"/>
        <Property Name="Freight" Type="Edm.Decimal" Precision="19" Scale="4"/>
        <NavigationProperty Name="Customer" Type="NorthwindModel.Customer" Partner="Orders">
          <ReferentialConstraint Property="CustomerID" ReferencedProperty="CustomerID"/>
        </NavigationProperty>
        <NavigationProperty Name="Employee" Type="NorthwindModel.Employee" Partner="Orders"/>
        <NavigationProperty Name="Order_Details" Type="Collection(NorthwindModel.Order_Detail)" Partner="Order"/>
      </EntityType>
      <EntityType Name="Employee">
        <Key><PropertyRef Name="EmployeeID"/></Key>
        <Property Name="EmployeeID" Type="Edm.Int32" Nullable="false"/>
        <Property Name="LastName" Type="Edm.String" Nullable="false" MaxLength="20"/>
        <NavigationProperty Name="Orders" Type="Collection(NorthwindModel.Order)" Partner="Employee"/>
      </EntityType>
      <EntityType Name="Product">
        <Key><PropertyRef Name="ProductID"/></Key>
        <Property Name="ProductID" Type="Edm.Int32" Nullable="false"/>
        <Property Name="ProductName" Type="Edm.String" Nullable="false" MaxLength="40"/>
        <Property Name="RowGuid" Type="Edm.Guid"/>
        <NavigationProperty Name="Category" Type="NorthwindModel.Category" Partner="Products"/>
        <NavigationProperty Name="Order_Details" Type="Collection(NorthwindModel.Order_Detail)" Partner="Product"/>
      </EntityType>
      <EntityType Name="Category">
        <Key><PropertyRef Name="CategoryID"/></Key>
        <Property Name="CategoryID" Type="Edm.Int32" Nullable="false"/>
        <Property Name="CategoryName" Type="Edm.String" Nullable="false" MaxLength="15"/>
        <NavigationProperty Name="Products" Type="Collection(NorthwindModel.Product)" Partner="Category"/>
      </EntityType>
      <EntityType Name="Order_Detail">
        <Key>
          <PropertyRef Name="OrderID"/>
          <PropertyRef Name="ProductID"/>
        </Key>
        <Property Name="OrderID" Type="Edm.Int32" Nullable="false"/>
        <Property Name="ProductID" Type="Edm.Int32" Nullable="false"/>
        <Property Name="Quantity" Type="Edm.Int16" Nullable="false"/>
        <NavigationProperty Name="Order" Type="NorthwindModel.Order" Partner="Order_Details"/>
        <NavigationProperty Name="Product" Type="NorthwindModel.Product" Partner="Order_Details"/>
      </EntityType>
      <ComplexType Name="CT_Address">
        <Property Name="Street" Type="Edm.String"/>
        <Property Name="City" Type="Edm.String"/>
      </ComplexType>
      <EnumType Name="ShipMethod" UnderlyingType="Edm.Int32">
        <Member Name="Ground" Value="0"/>
        <Member Name="Air" Value="1"/>
      </EnumType>
    </Schema>
  </edmx:DataServices>
</edmx:Edmx>`

func TestParse_Northwind(t *testing.T) {
	md, err := Parse(northwindXML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if md.Version != "4.0" {
		t.Errorf("version = %q, want %q", md.Version, "4.0")
	}
	if len(md.AllEntities) != 6 {
		t.Fatalf("entities = %d, want 6", len(md.AllEntities))
	}
	if len(md.AllComplexTypes) != 1 {
		t.Errorf("complex types = %d, want 1", len(md.AllComplexTypes))
	}
	if len(md.AllEnumTypes) != 1 {
		t.Errorf("enum types = %d, want 1", len(md.AllEnumTypes))
	}

	customer := md.EntityByName("Customer")
	if customer == nil {
		t.Fatal("Customer entity not found")
	}
	if customer.FullName != "NorthwindModel.Customer" {
		t.Errorf("full name = %q, want %q", customer.FullName, "NorthwindModel.Customer")
	}
	if len(customer.NavigationProperties) != 1 {
		t.Fatalf("Customer navigations = %d, want 1", len(customer.NavigationProperties))
	}

	orders := customer.NavigationProperties[0]
	if orders.Name != "Orders" {
		t.Errorf("nav name = %q, want %q", orders.Name, "Orders")
	}
	if !orders.IsCollection {
		t.Error("Orders should be a collection")
	}
	if orders.TargetEntity != "Order" {
		t.Errorf("target = %q, want %q", orders.TargetEntity, "Order")
	}
	if orders.Type != "Collection(NorthwindModel.Order)" {
		t.Errorf("raw type = %q, want preserved original", orders.Type)
	}
	if orders.Partner != "Customer" {
		t.Errorf("partner = %q, want %q", orders.Partner, "Customer")
	}
}

func TestParse_Deterministic(t *testing.T) {
	first, err := Parse(northwindXML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	second, err := Parse(northwindXML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(first.Schemas, second.Schemas) {
		t.Error("parsing the same document twice produced different schemas")
	}
	if first.Version != second.Version {
		t.Errorf("versions differ: %q vs %q", first.Version, second.Version)
	}
}

func TestParse_FullNameComposition(t *testing.T) {
	md, err := Parse(northwindXML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for _, e := range md.AllEntities {
		want := e.Namespace + "." + e.Name
		if e.FullName != want {
			t.Errorf("%s: full name = %q, want %q", e.Name, e.FullName, want)
		}
	}
}

func TestParse_Nullability(t *testing.T) {
	md, err := Parse(northwindXML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	customer := md.EntityByName("Customer")
	for _, p := range customer.Properties {
		switch p.Name {
		case "CustomerID", "CompanyName":
			if p.Nullable {
				t.Errorf("%s: explicitly Nullable=false should be non-nullable", p.Name)
			}
		case "ContactName":
			if !p.Nullable {
				t.Errorf("%s: absent Nullable attribute should default to nullable", p.Name)
			}
		}
	}
}

func TestParse_KeyMembership(t *testing.T) {
	md, err := Parse(northwindXML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	detail := md.EntityByName("Order_Detail")
	if got := len(detail.KeyProperties); got != 2 {
		t.Fatalf("composite key size = %d, want 2", got)
	}

	keyed := 0
	for _, p := range detail.Properties {
		if p.IsKey {
			keyed++
		}
	}
	if keyed != 2 {
		t.Errorf("properties marked IsKey = %d, want 2", keyed)
	}
}

func TestParse_ReferentialConstraints(t *testing.T) {
	md, err := Parse(northwindXML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	order := md.EntityByName("Order")
	var customerNav, employeeNav *NavigationProperty
	for i := range order.NavigationProperties {
		switch order.NavigationProperties[i].Name {
		case "Customer":
			customerNav = &order.NavigationProperties[i]
		case "Employee":
			employeeNav = &order.NavigationProperties[i]
		}
	}

	if customerNav == nil || len(customerNav.Constraints) != 1 {
		t.Fatal("Order.Customer should carry one referential constraint")
	}
	rc := customerNav.Constraints[0]
	if rc.Property != "CustomerID" || rc.ReferencedProperty != "CustomerID" {
		t.Errorf("constraint = %+v", rc)
	}

	// Absence, not an empty list.
	if employeeNav == nil || employeeNav.Constraints != nil {
		t.Error("Order.Employee should have nil constraints")
	}
}

func TestParse_MalformedXML(t *testing.T) {
	_, err := Parse("<edmx:Edmx><unclosed>")
	if err == nil {
		t.Fatal("expected error for malformed XML")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %T", err)
	}
}

func TestParse_NonEdmxRoot(t *testing.T) {
	_, err := Parse(`<Foo/>`)
	if err == nil {
		t.Fatal("expected error for non-EDMX root")
	}
	if !strings.Contains(err.Error(), "Foo") {
		t.Errorf("error should name the offending root, got %q", err)
	}
}

func TestParse_MissingDataServices(t *testing.T) {
	_, err := Parse(`<Edmx Version="4.0"><Other/></Edmx>`)
	if err == nil {
		t.Fatal("expected error for missing DataServices")
	}
	if !strings.Contains(err.Error(), "DataServices") {
		t.Errorf("error should mention DataServices, got %q", err)
	}
}

func TestParse_UnprefixedDocument(t *testing.T) {
	// Producers that declare no namespaces at all still parse.
	md, err := Parse(`<Edmx><DataServices><Schema><EntityType Name="Thing"><Key><PropertyRef Name="ID"/></Key><Property Name="ID" Type="Edm.Int32" Nullable="false"/></EntityType></Schema></DataServices></Edmx>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if md.Version != "4.0" {
		t.Errorf("missing Version should default to 4.0, got %q", md.Version)
	}
	if len(md.Schemas) != 1 || md.Schemas[0].Namespace != "Default" {
		t.Errorf("missing Namespace should default to Default, got %+v", md.Schemas)
	}
	if md.EntityByName("Thing") == nil {
		t.Error("Thing entity not found")
	}
}

func TestParse_CaseInsensitiveRootMatch(t *testing.T) {
	md, err := Parse(`<EDMX><DataServices><Schema Namespace="X"/></DataServices></EDMX>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(md.Schemas) != 1 {
		t.Errorf("schemas = %d, want 1", len(md.Schemas))
	}
}

func TestParse_ComplexTypeKeyAnnotation(t *testing.T) {
	doc := `<Edmx xmlns:os="` + DefaultKeyAnnotationNamespace + `"><DataServices><Schema Namespace="M">
	  <ComplexType Name="CT_Line" os:Key="LineID">
	    <Property Name="LineID" Type="Edm.Int32"/>
	  </ComplexType>
	  <ComplexType Name="CT_Note" Key="NoteID">
	    <Property Name="NoteID" Type="Edm.Int32"/>
	  </ComplexType>
	  <ComplexType Name="CT_Plain">
	    <Property Name="Text" Type="Edm.String"/>
	  </ComplexType>
	</Schema></DataServices></Edmx>`

	md, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	line := md.ComplexTypeByName("CT_Line")
	if line == nil || line.KeyProperty != "LineID" {
		t.Errorf("namespaced Key annotation not read: %+v", line)
	}
	note := md.ComplexTypeByName("CT_Note")
	if note == nil || note.KeyProperty != "NoteID" {
		t.Errorf("unnamespaced Key fallback not read: %+v", note)
	}
	plain := md.ComplexTypeByName("CT_Plain")
	if plain == nil || plain.KeyProperty != "" {
		t.Errorf("no annotation should mean no key: %+v", plain)
	}
}

func TestParse_CustomKeyAnnotationNamespace(t *testing.T) {
	const customNS = "http://example.com/annotations"
	doc := `<Edmx xmlns:x="` + customNS + `"><DataServices><Schema Namespace="M">
	  <ComplexType Name="CT_Line" x:Key="LineID"/>
	</Schema></DataServices></Edmx>`

	md, err := NewParser(WithKeyAnnotationNamespace(customNS)).Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ct := md.ComplexTypeByName("CT_Line"); ct == nil || ct.KeyProperty != "LineID" {
		t.Errorf("custom annotation namespace not honored: %+v", ct)
	}
}

func TestParse_EnumType(t *testing.T) {
	md, err := Parse(northwindXML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	en := md.AllEnumTypes[0]
	if en.Name != "ShipMethod" || en.UnderlyingType != "Edm.Int32" || en.IsFlags {
		t.Errorf("enum = %+v", en)
	}
	if len(en.Members) != 2 || en.Members[0].Name != "Ground" || en.Members[0].Value != "0" {
		t.Errorf("members = %+v", en.Members)
	}
}

func TestCollectionInner(t *testing.T) {
	if inner, ok := CollectionInner("Collection(NorthwindModel.Order)"); !ok || inner != "NorthwindModel.Order" {
		t.Errorf("got %q, %v", inner, ok)
	}
	if _, ok := CollectionInner("NorthwindModel.Order"); ok {
		t.Error("plain type should not parse as collection")
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("CT_Address"); got != "Address" {
		t.Errorf("got %q, want %q", got, "Address")
	}
	if got := DisplayName("Customer"); got != "Customer" {
		t.Errorf("got %q, want %q", got, "Customer")
	}
	// A name that is only the prefix keeps its name.
	if got := DisplayName("CT_"); got != "CT_" {
		t.Errorf("got %q, want %q", got, "CT_")
	}
}
